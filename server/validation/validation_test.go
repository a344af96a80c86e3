package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validFields() Fields {
	return Fields{
		FieldTitle:     "Mr",
		FieldFirstName: "John",
		FieldLastName:  "Smith",
		FieldMobile1:   "9876543210",
		FieldMobile2:   "",
		FieldCity:      "Mumbai",
		FieldState:     "Maharashtra",
		FieldPincode:   "400001",
	}
}

func with(field, value string) Fields {
	fields := validFields()
	fields[field] = value
	return fields
}

func without(field string) Fields {
	fields := validFields()
	delete(fields, field)
	return fields
}

func TestContact(t *testing.T) {
	cases := []struct {
		description string
		fields      Fields
		mode        Mode
		expectedErr string
	}{
		{"valid contact passes", validFields(), ModeCreate, ""},
		{"title is trimmed", with(FieldTitle, " Dr "), ModeCreate, ""},
		{"unknown title fails", with(FieldTitle, "Sir"), ModeCreate, "Title must be Mr, Mrs, Ms, or Dr"},
		{"missing title fails", without(FieldTitle), ModeBulk, "Title must be Mr, Mrs, Ms, or Dr"},
		{"digits in first name fail", with(FieldFirstName, "J0hn"), ModeCreate, "Invalid first name (letters only)"},
		{"spaces in names pass", with(FieldLastName, "De Souza"), ModeCreate, ""},
		{"blank last name fails", with(FieldLastName, "   "), ModeCreate, "Invalid last name (letters only)"},
		{"9 digit mobile fails", with(FieldMobile1, "987654321"), ModeCreate, "Mobile must be exactly 10 digits"},
		{"11 digit mobile fails", with(FieldMobile1, "98765432101"), ModeCreate, "Mobile must be exactly 10 digits"},
		{"non digit mobile fails", with(FieldMobile1, "98765x3210"), ModeCreate, "Mobile must be exactly 10 digits"},
		{"10 digit mobile with padding passes", with(FieldMobile1, " 9876543210 "), ModeCreate, ""},
		{"city with digits fails", with(FieldCity, "Mumbai1"), ModeCreate, "Invalid city (letters only)"},
		{"state missing fails", without(FieldState), ModeCreate, "Invalid state (letters only)"},
		{"5 digit pincode fails", with(FieldPincode, "40000"), ModeCreate, "Pincode must be exactly 6 digits"},
		{"7 digit pincode fails", with(FieldPincode, "4000011"), ModeCreate, "Pincode must be exactly 6 digits"},
		{"bad mobile2 fails on create", with(FieldMobile2, "123"), ModeCreate, "Alternate mobile must be exactly 10 digits"},
		{"bad mobile2 fails on update", Fields{FieldMobile2: "123"}, ModeUpdate, "Alternate mobile must be exactly 10 digits"},
		{"bad mobile2 is accepted on bulk upload", with(FieldMobile2, "123"), ModeBulk, ""},
		{"update only checks present fields", Fields{FieldCity: "Pune"}, ModeUpdate, ""},
		{"update checks present fields", Fields{FieldPincode: "12"}, ModeUpdate, "Pincode must be exactly 6 digits"},
		{"update rejects emptied required field", Fields{FieldFirstName: ""}, ModeUpdate, "Invalid first name (letters only)"},
	}

	for _, tcase := range cases {
		t.Run(tcase.description, func(t *testing.T) {
			err := Contact(tcase.fields, tcase.mode)
			if tcase.expectedErr == "" {
				assert.Nil(t, err)
				return
			}

			if assert.NotNil(t, err) {
				assert.Equal(t, tcase.expectedErr, err.Error())
				assert.IsType(t, &FieldError{}, err)
			}
		})
	}
}

func TestContactReportsFirstBrokenRule(t *testing.T) {
	fields := Fields{
		FieldTitle:     "Mr",
		FieldFirstName: "J0hn",
		FieldLastName:  "Sm1th",
		FieldMobile1:   "1",
	}

	err := Contact(fields, ModeCreate)
	assert.EqualError(t, err, "Invalid first name (letters only)")
	assert.Equal(t, FieldFirstName, err.(*FieldError).Field)
}

func TestMessages(t *testing.T) {
	type input struct {
		Name string `validate:"required,min=2"`
	}

	err := Validator().Struct(input{Name: "a"})
	assert.Equal(t, []string{"name must be at least 2 characters"}, Messages(err))
}
