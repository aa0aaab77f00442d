// Package generation provides interfaces and error types for interacting
// with external image-generation services. It abstracts the details of the
// backend API integration (Gemini), allowing the application to generate
// and transform images without coupling to a specific external service.
package generation
