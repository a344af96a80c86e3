package csvimport

import (
	"fmt"
	"strings"
)

// Decode error codes
const (
	CodeEmptyInput     = "EmptyInput"
	CodeMissingColumns = "MissingColumns"
	CodeTooManyRows    = "TooManyRows"
	CodeFileTooLarge   = "FileTooLarge"
	CodeWrongFileType  = "WrongFileType"
)

var (
	ErrEmptyInput     = &DecodeError{Code: CodeEmptyInput, Message: "CSV must have a header row + at least one data row."}
	ErrMissingColumns = &DecodeError{Code: CodeMissingColumns, Message: "Missing columns. Please use the template."}
	ErrTooManyRows    = &DecodeError{Code: CodeTooManyRows, Message: fmt.Sprintf("Max %d contacts per upload. Split your file.", MAX_ROWS)}
	ErrFileTooLarge   = &DecodeError{Code: CodeFileTooLarge, Message: "File too large. Max 5MB allowed."}
	ErrWrongFileType  = &DecodeError{Code: CodeWrongFileType, Message: "Only CSV files are supported (.csv)"}
)

// DecodeError rejects a whole file. Errors with the same Code match under errors.Is.
type DecodeError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Columns []string `json:"columns,omitempty"`
}

func (e *DecodeError) Error() string {
	return e.Message
}

func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	return ok && t.Code == e.Code
}

func missingColumns(columns []string) *DecodeError {
	return &DecodeError{
		Code:    CodeMissingColumns,
		Message: fmt.Sprintf("Missing columns: %s. Please use the template.", strings.Join(columns, ", ")),
		Columns: columns,
	}
}
