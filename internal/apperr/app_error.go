package apperr

import (
	"fmt"

	"github.com/trananhvu/shoe-catalog/pkg/zerror"
)

const (
	ValidationErrorCode = "VALIDATION_FAILED"
	ShoeNotFoundCode    = "SHOE_NOT_FOUND"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
)

// NewValidation returns a validation error with the given message.
func NewValidation(msg string) zerror.ZError {
	return zerror.NewValidationFailed(ValidationErrorCode, msg)
}

// NewShoeNotFound returns the error for an id absent from the catalog.
func NewShoeNotFound(id string) zerror.ZError {
	return zerror.NewNotFound(ShoeNotFoundCode, fmt.Sprintf("shoe with id=%s not found", id))
}
