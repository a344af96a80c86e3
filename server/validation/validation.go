// Package validation holds the contact field rules shared by the create, update
// and bulk upload paths.
package validation

import (
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator"
)

// Canonical contact field names. CSV headers and JSON payloads resolve to these.
const (
	FieldTitle     = "title"
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldMobile1   = "mobile1"
	FieldMobile2   = "mobile2"
	FieldCity      = "city"
	FieldState     = "state"
	FieldPincode   = "pincode"
)

// Mode selects which rules apply to a set of fields.
type Mode int

const (
	// ModeCreate requires every mandatory field and checks mobile2 when given.
	ModeCreate Mode = iota
	// ModeUpdate only checks the fields that are present.
	ModeUpdate
	// ModeBulk requires every mandatory field and leaves mobile2 unchecked.
	ModeBulk
)

// Fields maps canonical field names to raw values. An absent key means the
// field was not supplied at all.
type Fields map[string]string

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Message
}

type rule struct {
	field    string
	tag      string
	message  string
	optional bool
	// lenient rules are skipped for bulk uploads
	lenient bool
}

// contactRules are evaluated in order; the first violation wins.
var contactRules = []rule{
	{field: FieldTitle, tag: "required,oneof=Mr Mrs Ms Dr", message: "Title must be Mr, Mrs, Ms, or Dr"},
	{field: FieldFirstName, tag: "required,letters", message: "Invalid first name (letters only)"},
	{field: FieldLastName, tag: "required,letters", message: "Invalid last name (letters only)"},
	{field: FieldMobile1, tag: "required,mobile", message: "Mobile must be exactly 10 digits"},
	{field: FieldCity, tag: "required,letters", message: "Invalid city (letters only)"},
	{field: FieldState, tag: "required,letters", message: "Invalid state (letters only)"},
	{field: FieldPincode, tag: "required,pincode", message: "Pincode must be exactly 6 digits"},
	{field: FieldMobile2, tag: "mobile", message: "Alternate mobile must be exactly 10 digits", optional: true, lenient: true},
}

var (
	lettersRegex = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	mobileRegex  = regexp.MustCompile(`^[0-9]{10}$`)
	pincodeRegex = regexp.MustCompile(`^[0-9]{6}$`)

	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator with the contact rules registered
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		if err := RegisterValidators(validate); err != nil {
			panic(err)
		}
	})

	return validate
}

func RegisterValidators(validate *validator.Validate) error {
	err := validate.RegisterValidation("letters", func(fl validator.FieldLevel) bool {
		return lettersRegex.MatchString(fl.Field().String())
	})
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobileRegex.MatchString(fl.Field().String())
	})
	if err != nil {
		return err
	}

	return validate.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
		return pincodeRegex.MatchString(fl.Field().String())
	})
}

// Contact checks fields against the contact rules and returns a *FieldError
// naming the first rule broken, or nil.
func Contact(fields Fields, mode Mode) error {
	v := Validator()

	for _, r := range contactRules {
		value, present := fields[r.field]
		if !present && mode == ModeUpdate {
			continue
		}

		if r.lenient && mode == ModeBulk {
			continue
		}

		value = strings.TrimSpace(value)
		if r.optional && value == "" {
			continue
		}

		if err := v.Var(value, r.tag); err != nil {
			return &FieldError{Field: r.field, Message: r.message}
		}
	}

	return nil
}

// Messages flattens validator errors into one message per failed field
func Messages(err error) []string {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		messages = append(messages, fieldMessage(fieldErr))
	}

	return messages
}

func fieldMessage(fieldErr validator.FieldError) string {
	field := strings.ToLower(fieldErr.Field())

	switch fieldErr.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + fieldErr.Param() + " characters"
	case "max":
		return field + " must be at most " + fieldErr.Param() + " characters"
	}

	return field + " is invalid"
}
