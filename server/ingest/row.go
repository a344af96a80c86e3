package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Daskott/contactspro/server/models"
	"github.com/Daskott/contactspro/server/validation"
	"github.com/pkg/errors"
)

// Text is a contact value as clients send it: a JSON string or a JSON number,
// the latter kept in its decimal form
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*t = Text(value)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return errors.Errorf("expected a string or number, got %s", data)
	}
	*t = Text(number.String())

	return nil
}

func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// CandidateRow is an unvalidated contact from a bulk upload or a decoded CSV
type CandidateRow struct {
	Title     Text `json:"title"`
	FirstName Text `json:"firstName"`
	LastName  Text `json:"lastName"`
	Mobile1   Text `json:"mobile1"`
	Mobile2   Text `json:"mobile2"`
	City      Text `json:"city"`
	State     Text `json:"state"`
	Pincode   Text `json:"pincode"`

	// Row is the source row number when the row came from a file
	Row   int    `json:"row,omitempty"`
	Error string `json:"error,omitempty"`
}

// Fields returns the row keyed by canonical field name
func (r CandidateRow) Fields() validation.Fields {
	return validation.Fields{
		validation.FieldTitle:     string(r.Title),
		validation.FieldFirstName: string(r.FirstName),
		validation.FieldLastName:  string(r.LastName),
		validation.FieldMobile1:   string(r.Mobile1),
		validation.FieldMobile2:   string(r.Mobile2),
		validation.FieldCity:      string(r.City),
		validation.FieldState:     string(r.State),
		validation.FieldPincode:   string(r.Pincode),
	}
}

// Set assigns value to the canonical field; unknown fields are ignored
func (r *CandidateRow) Set(field, value string) {
	switch field {
	case validation.FieldTitle:
		r.Title = Text(value)
	case validation.FieldFirstName:
		r.FirstName = Text(value)
	case validation.FieldLastName:
		r.LastName = Text(value)
	case validation.FieldMobile1:
		r.Mobile1 = Text(value)
	case validation.FieldMobile2:
		r.Mobile2 = Text(value)
	case validation.FieldCity:
		r.City = Text(value)
	case validation.FieldState:
		r.State = Text(value)
	case validation.FieldPincode:
		r.Pincode = Text(value)
	}
}

// DisplayName is "firstName lastName", or "Row n" when both are blank
func (r CandidateRow) DisplayName(rowNum int) string {
	name := strings.TrimSpace(fmt.Sprintf("%s %s", r.FirstName.String(), r.LastName.String()))
	if name == "" {
		return fmt.Sprintf("Row %d", rowNum)
	}

	return name
}

// Contact converts a validated row to a new, non-favorite contact
func (r CandidateRow) Contact() *models.Contact {
	return &models.Contact{
		Title:     r.Title.String(),
		FirstName: r.FirstName.String(),
		LastName:  r.LastName.String(),
		Mobile1:   r.Mobile1.String(),
		Mobile2:   r.Mobile2.String(),
		Address: models.Address{
			City:    r.City.String(),
			State:   r.State.String(),
			Pincode: r.Pincode.String(),
		},
	}
}
