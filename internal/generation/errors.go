package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when image generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate image")

	// ErrInvalidResponse is returned when the backend response is malformed or
	// contains no image payload
	ErrInvalidResponse = errors.New("invalid response from image backend")

	// ErrContentBlocked is returned when the backend blocks the request due to safety filters
	ErrContentBlocked = errors.New("content blocked by backend safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during image generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
