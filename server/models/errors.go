package models

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("conflict")

	ErrDuplicateMobile    = &ConflictError{Message: "Duplicate mobile number"}
	ErrDuplicateGroupName = &ConflictError{Message: "Group name already exists"}
)

// ConflictError is returned when a write breaks a uniqueness constraint.
// errors.Is(err, ErrConflict) holds for every ConflictError.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// InvalidParameterError is returned for malformed pagination/filter input
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter '%s': %s", e.Param, e.Reason)
}

func invalidParam(param, reason string) error {
	return &InvalidParameterError{Param: param, Reason: reason}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
