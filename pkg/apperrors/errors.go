package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrPreferencesNotSet  = errors.New("preferences have not been set")
	ErrInvalidDocument    = errors.New("invalid schema document")
	ErrUnknownConnection  = errors.New("no connection for org")
	ErrUnsupportedAdapter = errors.New("unsupported catalog adapter")
	ErrBatchSuperseded    = errors.New("fetch batch superseded by a newer batch")
)
