package server

import (
	"net/http"
	"strings"

	"github.com/Daskott/contactspro/server/models"
	"github.com/Daskott/contactspro/server/validation"
)

type groupRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
	Icon  string `json:"icon" validate:"omitempty,max=50"`
}

type groupUpdateRequest struct {
	Name  string `json:"name" validate:"omitempty,min=2,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
	Icon  string `json:"icon" validate:"omitempty,max=50"`
}

func listGroups(rw http.ResponseWriter, r *http.Request) {
	groups, err := models.ListGroups(r.Context(), models.DEFAULT_GROUP_OWNER)
	if err != nil {
		writeError(rw, err, "Group")
		return
	}

	writeResponse(rw, map[string]interface{}{"groups": groups}, http.StatusOK)
}

func createGroup(rw http.ResponseWriter, r *http.Request) {
	data := groupRequest{}
	if err := decodeBody(r, &data); err != nil {
		writeError(rw, err, "Group")
		return
	}

	data.Name = strings.TrimSpace(data.Name)
	if err := validation.Validator().Struct(data); err != nil {
		writeError(rw, err, "Group")
		return
	}

	group := &models.Group{Name: data.Name, Color: data.Color, Icon: data.Icon}
	if err := models.CreateGroup(r.Context(), group); err != nil {
		writeError(rw, err, "Group")
		return
	}

	writeResponse(rw, map[string]interface{}{
		"success": true,
		"group":   group,
		"message": "Group created successfully",
	}, http.StatusCreated)
}

func updateGroup(rw http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(rw, err, "Group")
		return
	}

	data := groupUpdateRequest{}
	if err := decodeBody(r, &data); err != nil {
		writeError(rw, err, "Group")
		return
	}

	data.Name = strings.TrimSpace(data.Name)
	if err := validation.Validator().Struct(data); err != nil {
		writeError(rw, err, "Group")
		return
	}

	group, err := models.UpdateGroup(r.Context(), id, models.GroupChanges(data))
	if err != nil {
		writeError(rw, err, "Group")
		return
	}

	writeResponse(rw, map[string]interface{}{
		"success": true,
		"group":   group,
		"message": "Group updated successfully",
	}, http.StatusOK)
}

func deleteGroup(rw http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(rw, err, "Group")
		return
	}

	if err := models.DeleteGroup(r.Context(), id); err != nil {
		writeError(rw, err, "Group")
		return
	}

	writeMessage(rw, "Group deleted successfully", http.StatusOK)
}
