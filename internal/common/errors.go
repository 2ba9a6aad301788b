// Package common defines sentinel errors shared by the cardkeeper layers.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository/gateway errors.
	ErrNotFound    = errors.New("not found")
	ErrParse       = errors.New("malformed input")
	ErrPersistence = errors.New("persistence failure")

	// Validation errors. ErrValidation wraps the field-level ones.
	ErrValidation     = errors.New("validation error")
	ErrFieldEmpty     = errors.New("field must not be empty")
	ErrBalanceInvalid = errors.New("balance could not be parsed")

	// Rendering.
	ErrRenderFailed = errors.New("barcode generation failed")

	// Session flow control.
	ErrNotLoaded       = errors.New("card not loaded")
	ErrSaveInProgress  = errors.New("save already in progress")
	ErrNoPendingPrompt = errors.New("no pending barcode id prompt")
	ErrSessionClosed   = errors.New("session closed")
)
