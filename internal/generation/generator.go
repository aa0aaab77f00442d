package generation

import (
	"context"

	"github.com/proofsheet/proofsheet-api/internal/domain"
)

// Generator defines the interface for producing images from prompts or
// source images. This interface serves as a boundary between the
// application core and the external image backend, following the
// hexagonal architecture pattern.
type Generator interface {
	// Generate creates an image from a text prompt.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can be used for cancellation
	//   - prompt: The generation prompt
	//   - opts: Size and quality presets for the render
	//
	// Returns:
	//   - The produced image
	//   - An error if generation fails (see errors.go for specific types)
	Generate(ctx context.Context, prompt string, opts domain.ImageOptions) (*domain.Image, error)

	// Transform produces a new image from a source image and an
	// instruction. An empty instruction requests a generic enhancement.
	Transform(ctx context.Context, source *domain.Image, instruction string, opts domain.ImageOptions) (*domain.Image, error)
}
