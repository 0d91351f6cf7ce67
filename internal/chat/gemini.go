package chat

// gemini.go talks to the Gemini API through the google.golang.org/genai SDK.
// Images are generated by a Gemini image model that returns inline data;
// the source photo is sent along so the model restyles the actual product.

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ContentGenerator is the subset of *genai.Models used by GeminiBackend.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiBackend implements Backend on the Gemini API.
type GeminiBackend struct {
	models     ContentGenerator
	textModel  string
	imageModel string
}

// NewGeminiClient creates a genai client for the Gemini Developer API.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// NewGeminiBackend creates a backend from a genai model service, usually
// client.Models. Empty model IDs select the Gemini defaults.
func NewGeminiBackend(models ContentGenerator, textModel, imageModel string) *GeminiBackend {
	if textModel == "" {
		textModel = ModelGemini25Flash
	}
	if imageModel == "" {
		imageModel = ModelGemini25FlashImage
	}
	return &GeminiBackend{models: models, textModel: textModel, imageModel: imageModel}
}

// Name implements Backend.
func (b *GeminiBackend) Name() string {
	return BackendGemini
}

// Converse implements Backend.
func (b *GeminiBackend) Converse(ctx context.Context, req ConverseRequest) (string, error) {
	var parts []*genai.Part
	if req.Image != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: req.Image.Format.MIMEType(), Data: req.Image.Data},
		})
	}
	parts = append(parts, &genai.Part{Text: req.Prompt})

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: req.MaxTokens,
		Temperature:     genai.Ptr(req.Temperature),
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := b.models.GenerateContent(ctx, b.textModel, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content (%s): %w", b.textModel, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini generate content (%s): %w", b.textModel, ErrEmptyResponse)
	}
	return resp.Text(), nil
}

// GenerateImage implements Backend. Gemini image models take neither a
// negative prompt nor a guidance scale nor an image count: the negative
// prompt is folded into the instruction, one image is requested and the
// guidance scale is ignored.
func (b *GeminiBackend) GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error) {
	instruction := fmt.Sprintf("%s. Square %dx%d composition.", req.Prompt, req.Width, req.Height)
	if req.NegativePrompt != "" {
		instruction += " Avoid: " + req.NegativePrompt + "."
	}

	var parts []*genai.Part
	if req.SourceImage != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: req.SourceImage.Format.MIMEType(), Data: req.SourceImage.Data},
		})
	}
	parts = append(parts, &genai.Part{Text: instruction})

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := b.models.GenerateContent(ctx, b.imageModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate image (%s): %w", b.imageModel, err)
	}
	if resp == nil {
		return nil, nil
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				log.Debug().
					Str("mime_type", part.InlineData.MIMEType).
					Int("image_bytes", len(part.InlineData.Data)).
					Msg("Gemini image received")
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, nil
}
