package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/proofsheet/proofsheet-api/internal/config"
	"github.com/proofsheet/proofsheet-api/internal/domain"
	"github.com/proofsheet/proofsheet-api/internal/generation"
)

// defaultTransformInstruction is substituted when a transformation is
// requested without instructions.
const defaultTransformInstruction = "Enhance this image to make it more vibrant, clear, and visually appealing while maintaining its original composition and style."

// ImageGenerator implements generation.Generator against the Gemini API.
type ImageGenerator struct {
	logger *slog.Logger
	config config.GenerationConfig
	client *genai.Client
	model  string
}

// NewImageGenerator creates an ImageGenerator with the provided
// dependencies, validating the configuration and initializing the API
// client.
func NewImageGenerator(ctx context.Context, logger *slog.Logger, cfg config.GenerationConfig) (*ImageGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &ImageGenerator{
		logger: logger,
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// Generate produces an image from a text prompt.
func (g *ImageGenerator) Generate(ctx context.Context, prompt string, opts domain.ImageOptions) (*domain.Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, domain.ErrEmptyPrompt
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: buildPrompt(prompt, opts)},
		},
	}}

	return g.callWithRetry(ctx, contents)
}

// Transform produces a new image from a source image and an instruction.
// An empty instruction falls back to a generic enhancement request.
func (g *ImageGenerator) Transform(ctx context.Context, source *domain.Image, instruction string, opts domain.ImageOptions) (*domain.Image, error) {
	if source == nil || len(source.Data) == 0 {
		return nil, fmt.Errorf("%w: no source image", generation.ErrGenerationFailed)
	}

	if strings.TrimSpace(instruction) == "" {
		instruction = defaultTransformInstruction
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{Data: source.Data, MIMEType: source.MIMEType}},
			{Text: buildPrompt(instruction, opts)},
		},
	}}

	return g.callWithRetry(ctx, contents)
}

// buildPrompt folds the rendering options into the request text; the
// image models take no structured size or quality parameters.
func buildPrompt(prompt string, opts domain.ImageOptions) string {
	var hints []string
	if opts.Size != "" {
		hints = append(hints, "target resolution "+opts.Size)
	}
	if opts.Quality != "" {
		hints = append(hints, string(opts.Quality)+" quality")
	}
	if len(hints) == 0 {
		return prompt
	}
	return prompt + " (" + strings.Join(hints, ", ") + ")"
}

// callWithRetry makes the API call with exponential backoff for
// transient errors. Permanent errors (safety blocks, malformed
// responses) are returned immediately without retrying.
func (g *ImageGenerator) callWithRetry(ctx context.Context, contents []*genai.Content) (*domain.Image, error) {
	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseDelay := g.config.RetryDelay
	if baseDelay <= 0 {
		baseDelay = 2 * time.Second
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	for attempt := 0; ; attempt++ {
		g.logger.InfoContext(ctx, "calling image backend",
			"model", g.model,
			"attempt", attempt+1,
			"max_attempts", maxRetries+1)

		resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, genConfig)

		var img *domain.Image
		transient := false
		if err != nil {
			// API transport and server errors are assumed transient.
			transient = true
			err = fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		} else {
			img, err = extractImage(resp)
		}

		if err == nil {
			g.logger.InfoContext(ctx, "image backend call succeeded",
				"attempt", attempt+1,
				"bytes", img.Size())
			return img, nil
		}

		g.logger.ErrorContext(ctx, "image backend call failed",
			"attempt", attempt+1,
			"error", err)

		if !transient || attempt >= maxRetries {
			if transient {
				return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
					generation.ErrTransientFailure, maxRetries)
			}
			return nil, err
		}

		// delay = baseDelay * 2^attempt * jitter in [0.5, 1.0)
		backoff := float64(baseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attempt+1,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// extractImage pulls the first inline image payload out of a response.
// Responses with no candidates, no content, or no image part are
// malformed; a safety finish reason is a content block.
func extractImage(resp *genai.GenerateContentResponse) (*domain.Image, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: request blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content", generation.ErrInvalidResponse)
	}

	for _, part := range candidate.Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		return domain.NewImage(part.InlineData.Data, mimeType), nil
	}

	return nil, fmt.Errorf("%w: no image payload in response", generation.ErrInvalidResponse)
}
