package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/proofsheet/proofsheet-api/internal/domain"
	"github.com/proofsheet/proofsheet-api/internal/generation"
	"github.com/proofsheet/proofsheet-api/internal/session"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, session.ErrItemNotFound):
		return http.StatusNotFound

	// State conflicts: the item exists but cannot take this action now
	case errors.Is(err, session.ErrItemNotRetryable),
		errors.Is(err, domain.ErrNoResult):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, session.ErrNoPrompts),
		errors.Is(err, session.ErrTooManyPrompts),
		errors.Is(err, session.ErrNoValidUploads),
		errors.Is(err, session.ErrNoSourceImage),
		errors.Is(err, domain.ErrEmptyPrompt),
		errors.Is(err, domain.ErrUnreadableImage),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	// Backend refusals surface as unprocessable rather than server faults
	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, session.ErrItemNotFound):
		return "Item not found"

	case errors.Is(err, session.ErrItemNotRetryable):
		return "Item is not in a retryable state"

	case errors.Is(err, domain.ErrNoResult):
		return "Item has no result image yet"

	case errors.Is(err, session.ErrNoPrompts):
		return "No prompts provided"

	case errors.Is(err, session.ErrTooManyPrompts):
		return "Too many prompts in one submission"

	case errors.Is(err, session.ErrNoValidUploads):
		return "No readable images in upload"

	case errors.Is(err, session.ErrNoSourceImage):
		return "Item has no image to refine"

	case errors.Is(err, domain.ErrEmptyPrompt):
		return "Prompt cannot be empty"

	case errors.Is(err, domain.ErrUnreadableImage):
		return "Uploaded file is not a readable image"

	case errors.Is(err, generation.ErrContentBlocked):
		return "Request was blocked by content safety filters"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'CreateGenerationRequest.Prompt' Error:Field
		// validation for 'Prompt' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
