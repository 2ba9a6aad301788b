package session

import (
	"strings"

	"github.com/dmitrijs2005/cardkeeper/internal/common"
)

// Field names used in FieldError.
const (
	FieldStoreName = "store_name"
	FieldCardID    = "card_id"
	FieldBalance   = "balance"
)

type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

// ValidationError lists every field that blocks a save. It matches
// common.ErrValidation and each field's error with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return common.ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Fields)+1)
	errs = append(errs, common.ErrValidation)
	for _, f := range e.Fields {
		errs = append(errs, f.Err)
	}
	return errs
}

// Field returns the error for field, or nil.
func (e *ValidationError) Field(field string) error {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Err
		}
	}
	return nil
}
