package apperrors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidMapping   = errors.New("invalid column mapping")
	ErrInvalidProperty  = errors.New("invalid property value")
	ErrTypeMismatch     = errors.New("relationship endpoint type mismatch")
	ErrUploadInProgress = errors.New("upload already being processed")
)
