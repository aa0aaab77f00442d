// Package gemini implements the generation.Generator interface using
// Google's Gemini API as the image backend.
//
// The generator sends text prompts (and, for transformations, an inline
// source image) to an image-capable Gemini model and extracts the first
// inline image payload from the response. Transient API failures are
// retried with exponential backoff and jitter; safety blocks and
// malformed responses are treated as permanent and surface immediately.
package gemini
