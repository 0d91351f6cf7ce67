package chat

import (
	"context"
	"errors"

	"github.com/fpang/adforge/internal/filehandler"
)

// ErrEmptyResponse is returned when the model replied without any content.
var ErrEmptyResponse = errors.New("received empty response from model")

// InlineImage is an image sent alongside a prompt.
type InlineImage struct {
	Data   []byte
	Format filehandler.Format
}

// ConverseRequest is a single-turn user message to the text/vision model.
// Image is nil for text-only prompts.
type ConverseRequest struct {
	Image       *InlineImage
	Prompt      string
	MaxTokens   int32
	Temperature float32
}

// ImageRequest asks the image model for a text-to-image generation.
// SourceImage is the original product photo; backends whose image task is
// pure text-to-image ignore it.
type ImageRequest struct {
	SourceImage    *InlineImage
	Prompt         string
	NegativePrompt string
	NumberOfImages int
	Width          int
	Height         int
	CFGScale       float64
}

// Backend is a remote generative service. Implementations must be safe for
// concurrent use; transport and service errors are returned unmodified.
type Backend interface {
	// Converse returns the text of the model's reply.
	Converse(ctx context.Context, req ConverseRequest) (string, error)
	// GenerateImage returns the first generated image, or nil when the
	// service produced none.
	GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error)
	// Name identifies the backend in logs and metrics.
	Name() string
}
