package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Daskott/contactspro/server/ingest"
	"github.com/Daskott/contactspro/server/models"
	"github.com/Daskott/contactspro/server/validation"
)

type addressRequest struct {
	City    *ingest.Text `json:"city"`
	State   *ingest.Text `json:"state"`
	Pincode *ingest.Text `json:"pincode"`
}

// contactRequest is the create/update body. Nil fields were not sent.
type contactRequest struct {
	Title      *ingest.Text    `json:"title"`
	FirstName  *ingest.Text    `json:"firstName"`
	LastName   *ingest.Text    `json:"lastName"`
	Mobile1    *ingest.Text    `json:"mobile1"`
	Mobile2    *ingest.Text    `json:"mobile2"`
	Address    *addressRequest `json:"address"`
	IsFavorite *bool           `json:"isFavorite"`
	Groups     *[]uint         `json:"groups"`
}

type idsRequest struct {
	IDs        []uint `json:"ids"`
	IsFavorite bool   `json:"isFavorite"`
	GroupID    uint   `json:"groupId"`
}

func listContacts(rw http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		writeError(rw, err, "Contact")
		return
	}

	page, err := models.ListContacts(r.Context(), params)
	if err != nil {
		writeError(rw, err, "Contact")
		return
	}

	writeResponse(rw, page, http.StatusOK)
}

func findContact(rw http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(rw, err, "Contact")
		return
	}

	contact, err := models.FindContact(r.Context(), id)
	if err != nil {
		writeError(rw, err, "Contact")
		return
	}

	writeResponse(rw, contact, http.StatusOK)
}

func createContact(rw http.ResponseWriter, r *http.Request) {
	data := contactRequest{}
	if err := decodeBody(r, &data); err != nil {
		writeError(rw, err, "Contact")
		return
	}

	if err := validation.Contact(data.fields(), validation.ModeCreate); err != nil {
		writeError(rw, err, "Contact")
		return
	}

	contact := data.contact()
	if err := models.CreateContact(r.Context(), contact); err != nil {
		writeError(rw, err, "Contact")
		return
	}

	writeResponse(rw, contact, http.StatusCreated)
}

func updateContact(rw http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(rw, err, "Contact")
		return
	}

	data := contactRequest{}
	if err := decodeBody(r, &data); err != nil {
		writeError(rw, err, "Contact")
		return
	}

	if err := validation.Contact(data.fields(), validation.ModeUpdate); err != nil {
		writeError(rw, err, "Contact")
		return
	}

	contact, err := models.UpdateContact(r.Context(), id, data.changes())
	if err != nil {
		writeError(rw, err, "Contact")
		return
	}

	writeResponse(rw, contact, http.StatusOK)
}

func deleteContact(rw http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(rw, err, "Contact")
		return
	}

	if err := models.DeleteContact(r.Context(), id); err != nil {
		writeError(rw, err, "Contact")
		return
	}

	writeMessage(rw, "Contact deleted successfully", http.StatusOK)
}

func toggleFavorite(rw http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(rw, err, "Contact")
		return
	}

	data := idsRequest{}
	if err := decodeBody(r, &data); err != nil {
		writeError(rw, err, "Contact")
		return
	}

	contact, err := models.SetFavorite(r.Context(), id, data.IsFavorite)
	if err != nil {
		writeError(rw, err, "Contact")
		return
	}

	message := "Removed from favorites"
	if data.IsFavorite {
		message = "Added to favorites"
	}

	writeResponse(rw, map[string]interface{}{
		"success": true,
		"contact": contact,
		"message": message,
	}, http.StatusOK)
}

func bulkDeleteContacts(rw http.ResponseWriter, r *http.Request) {
	data, ok := decodeIDs(rw, r)
	if !ok {
		return
	}

	deleted, err := models.DeleteContacts(r.Context(), data.IDs)
	if err != nil {
		writeError(rw, err, "Contact")
		return
	}

	writeResponse(rw, map[string]interface{}{
		"success": true,
		"deleted": deleted,
		"message": fmt.Sprintf("%v contact(s) deleted", deleted),
	}, http.StatusOK)
}

func bulkFavoriteContacts(rw http.ResponseWriter, r *http.Request) {
	data, ok := decodeIDs(rw, r)
	if !ok {
		return
	}

	updated, err := models.SetFavorites(r.Context(), data.IDs, data.IsFavorite)
	if err != nil {
		writeError(rw, err, "Contact")
		return
	}

	writeResponse(rw, map[string]interface{}{
		"success": true,
		"updated": updated,
		"message": fmt.Sprintf("%v contact(s) updated", updated),
	}, http.StatusOK)
}

func bulkAssignGroup(rw http.ResponseWriter, r *http.Request) {
	data, ok := decodeIDs(rw, r)
	if !ok {
		return
	}

	updated, err := models.AssignGroup(r.Context(), data.IDs, data.GroupID)
	if err != nil {
		writeError(rw, err, "Group")
		return
	}

	writeResponse(rw, map[string]interface{}{
		"success": true,
		"updated": updated,
		"message": fmt.Sprintf("%v contact(s) added to group", updated),
	}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

// decodeIDs reads a bulk request body, writing a 400 when it names no contacts
func decodeIDs(rw http.ResponseWriter, r *http.Request) (idsRequest, bool) {
	data := idsRequest{}
	if err := decodeBody(r, &data); err != nil {
		writeError(rw, err, "Contact")
		return data, false
	}

	if len(data.IDs) == 0 {
		writeMessage(rw, "Please provide an array of contact IDs", http.StatusBadRequest)
		return data, false
	}

	return data, true
}

func (req contactRequest) fields() validation.Fields {
	fields := validation.Fields{}
	set := func(field string, value *ingest.Text) {
		if value != nil {
			fields[field] = string(*value)
		}
	}

	set(validation.FieldTitle, req.Title)
	set(validation.FieldFirstName, req.FirstName)
	set(validation.FieldLastName, req.LastName)
	set(validation.FieldMobile1, req.Mobile1)
	set(validation.FieldMobile2, req.Mobile2)

	if req.Address != nil {
		set(validation.FieldCity, req.Address.City)
		set(validation.FieldState, req.Address.State)
		set(validation.FieldPincode, req.Address.Pincode)
	}

	return fields
}

func (req contactRequest) changes() models.ContactChanges {
	trimmed := func(value *ingest.Text) *string {
		if value == nil {
			return nil
		}
		s := strings.TrimSpace(string(*value))
		return &s
	}

	changes := models.ContactChanges{
		Title:      trimmed(req.Title),
		FirstName:  trimmed(req.FirstName),
		LastName:   trimmed(req.LastName),
		Mobile1:    trimmed(req.Mobile1),
		Mobile2:    trimmed(req.Mobile2),
		IsFavorite: req.IsFavorite,
		GroupIDs:   req.Groups,
	}

	if req.Address != nil {
		changes.City = trimmed(req.Address.City)
		changes.State = trimmed(req.Address.State)
		changes.Pincode = trimmed(req.Address.Pincode)
	}

	return changes
}

func (req contactRequest) contact() *models.Contact {
	row := ingest.CandidateRow{}
	for field, value := range req.fields() {
		row.Set(field, value)
	}

	contact := row.Contact()
	if req.IsFavorite != nil {
		contact.IsFavorite = *req.IsFavorite
	}
	if req.Groups != nil {
		contact.GroupIDs = *req.Groups
	}

	return contact
}
