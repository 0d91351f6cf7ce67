// Package campaign sequences the model calls that turn one product photo
// into a marketing campaign: analysis, then copy, then a styled image.
package campaign

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/adforge/internal/assets"
	"github.com/fpang/adforge/internal/chat"
	"github.com/fpang/adforge/internal/filehandler"
)

// ErrInvalidImage is returned when the request image is not valid base64.
var ErrInvalidImage = errors.New("invalid image encoding")

// Generator is the set of model operations a campaign needs.
// *chat.Gateway satisfies it.
type Generator interface {
	AnalyzeImage(ctx context.Context, image []byte) (chat.ProductAnalysis, error)
	GenerateCopy(ctx context.Context, analysis chat.ProductAnalysis) (chat.MarketingCopy, error)
	GenerateStyledImage(ctx context.Context, image []byte, analysis chat.ProductAnalysis, style assets.Style) (*chat.StyledImage, error)
	RefineText(ctx context.Context, currentText, instruction, contextLabel string) (string, error)
}

// EncodedImage is an uploaded image as received: standard base64 text.
type EncodedImage string

// Decode returns the raw image bytes.
func (e EncodedImage) Decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(e)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return data, nil
}

// Format returns the detected image format, jpeg when undecodable or unknown.
func (e EncodedImage) Format() filehandler.Format {
	return filehandler.DetectFormatBase64(strings.TrimSpace(string(e)))
}

// Request is the input to GenerateCampaign. An empty or unknown Style
// selects the professional preset.
type Request struct {
	Image EncodedImage `json:"image"`
	Style string       `json:"style,omitempty"`
}

// Campaign is the assembled result. StyledImage is nil when the image model
// produced nothing; OriginalImage echoes the request image.
type Campaign struct {
	ProductAnalysis chat.ProductAnalysis `json:"product_analysis"`
	MarketingCopy   chat.MarketingCopy   `json:"marketing_copy"`
	StyledImage     *string              `json:"styled_image"`
	OriginalImage   *string              `json:"original_image"`

	// StyledImageFormat is the format of StyledImage when present.
	StyledImageFormat filehandler.Format `json:"-"`
}

// RefineRequest asks for one piece of generated text to be rewritten.
// Context labels which field the text came from, e.g. "instagram_caption".
type RefineRequest struct {
	CurrentText      string `json:"current_text"`
	RefinementPrompt string `json:"refinement_prompt"`
	Context          string `json:"context"`
}

// RefineResult is the rewritten text.
type RefineResult struct {
	RefinedText string `json:"refined_text"`
}

// Service runs campaigns against a Generator. It holds no per-request state.
type Service struct {
	gen Generator
}

// NewService creates a Service backed by gen.
func NewService(gen Generator) *Service {
	return &Service{gen: gen}
}

// GenerateCampaign runs analysis, copy and styling in order. The first
// failure aborts the campaign; no partial result is returned.
func (s *Service) GenerateCampaign(ctx context.Context, req Request) (*Campaign, error) {
	style := assets.ParseStyle(req.Style)
	logger := log.Ctx(ctx).With().Str("style", string(style)).Logger()

	image, err := req.Image.Decode()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	analysis, err := s.gen.AnalyzeImage(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("analyze image: %w", err)
	}
	logger.Info().
		Str("product", analysis.Name).
		Dur("duration", time.Since(start)).
		Msg("Product analysis complete")

	start = time.Now()
	marketing, err := s.gen.GenerateCopy(ctx, analysis)
	if err != nil {
		return nil, fmt.Errorf("generate copy: %w", err)
	}
	logger.Info().
		Int("hashtags", len(marketing.Hashtags)).
		Dur("duration", time.Since(start)).
		Msg("Marketing copy generated")

	start = time.Now()
	styled, err := s.gen.GenerateStyledImage(ctx, image, analysis, style)
	if err != nil {
		return nil, fmt.Errorf("generate styled image: %w", err)
	}
	logger.Info().
		Bool("has_image", styled != nil).
		Dur("duration", time.Since(start)).
		Msg("Styled image step complete")

	original := string(req.Image)
	c := &Campaign{
		ProductAnalysis: analysis,
		MarketingCopy:   marketing,
		OriginalImage:   &original,
	}
	if styled != nil {
		encoded := styled.Base64()
		c.StyledImage = &encoded
		c.StyledImageFormat = styled.Format
	}
	return c, nil
}

// Refine rewrites one piece of text. It does not depend on any campaign.
func (s *Service) Refine(ctx context.Context, req RefineRequest) (*RefineResult, error) {
	start := time.Now()
	text, err := s.gen.RefineText(ctx, req.CurrentText, req.RefinementPrompt, req.Context)
	if err != nil {
		return nil, fmt.Errorf("refine text: %w", err)
	}
	log.Ctx(ctx).Info().
		Str("context", req.Context).
		Int("refined_length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Text refined")
	return &RefineResult{RefinedText: text}, nil
}
