package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidStatus is returned when an item status is not valid.
	ErrInvalidStatus = errors.New("invalid item status")

	// ErrInvalidKind is returned when an item kind is not valid.
	ErrInvalidKind = errors.New("invalid item kind")

	// ErrEmptyPrompt is returned when a generation prompt is empty.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrMissingSource is returned when a transform item lacks a source image.
	ErrMissingSource = errors.New("transform item requires a source image")

	// ErrNoResult is returned when an operation requires a result image
	// that the item does not have yet.
	ErrNoResult = errors.New("item has no result image")

	// ErrUnreadableImage is returned when uploaded image bytes cannot be
	// decoded as a supported format.
	ErrUnreadableImage = errors.New("unreadable image data")
)
