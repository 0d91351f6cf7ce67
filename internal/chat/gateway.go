package chat

// gateway.go implements the four model operations behind a campaign:
// image analysis, copy generation, styled image generation and text
// refinement.
//
// Remote failures are returned as-is. Replies that do not parse into the
// expected shape are replaced wholesale by a fixed default object; this is
// logged at debug level and counted in the ModelFallbackCount metric, never
// reported as an error.

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/fpang/adforge/internal/assets"
	"github.com/fpang/adforge/internal/filehandler"
	"github.com/fpang/adforge/internal/jsonutil"
	"github.com/fpang/adforge/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Inference settings per operation.
const (
	analysisMaxTokens   = 1024
	analysisTemperature = 0.7
	copyMaxTokens       = 1024
	copyTemperature     = 0.8
	refineMaxTokens     = 512
	refineTemperature   = 0.7

	styledImageSize     = 1024
	styledImageCount    = 1
	styledImageCFGScale = 9.0
)

// ProductAnalysis is the structured description of the product in a photo.
type ProductAnalysis struct {
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	KeyFeatures    []string `json:"key_features"`
	TargetAudience string   `json:"target_audience"`
	ColorPalette   []string `json:"color_palette"`
	Mood           string   `json:"mood"`
}

// MarketingCopy is the generated text for one product.
type MarketingCopy struct {
	InstagramCaption string   `json:"instagram_caption"`
	EmailSubject     string   `json:"email_subject"`
	AdHeadline       string   `json:"ad_headline"`
	AdBody           string   `json:"ad_body"`
	Hashtags         []string `json:"hashtags"`
}

// StyledImage is a generated product image.
type StyledImage struct {
	Data   []byte
	Format filehandler.Format
}

// Base64 returns the image bytes in standard base64.
func (s *StyledImage) Base64() string {
	return base64.StdEncoding.EncodeToString(s.Data)
}

// DefaultProductAnalysis is substituted when the analysis reply is unusable.
func DefaultProductAnalysis() ProductAnalysis {
	return ProductAnalysis{
		Name:           "Product",
		Category:       "General",
		KeyFeatures:    []string{"Quality", "Value"},
		TargetAudience: "General consumers",
		ColorPalette:   []string{"#000000", "#FFFFFF"},
		Mood:           "professional",
	}
}

// DefaultMarketingCopy is substituted when the copy reply is unusable.
// The product name is woven into the caption, subject and headline as given.
func DefaultMarketingCopy(name string) MarketingCopy {
	return MarketingCopy{
		InstagramCaption: "Check out " + name + "!",
		EmailSubject:     "Discover " + name,
		AdHeadline:       name + " - Made for You",
		AdBody:           "Experience quality like never before.",
		Hashtags:         []string{"newproduct", "trending", "musthave"},
	}
}

// analysisPayload mirrors ProductAnalysis with pointer fields so that a
// missing key can be told apart from an empty value.
type analysisPayload struct {
	Name           *string   `json:"name"`
	Category       *string   `json:"category"`
	KeyFeatures    *[]string `json:"key_features"`
	TargetAudience *string   `json:"target_audience"`
	ColorPalette   *[]string `json:"color_palette"`
	Mood           *string   `json:"mood"`
}

var analysisKeys = []string{"name", "category", "key_features", "target_audience", "color_palette", "mood"}

func (p analysisPayload) complete() bool {
	return p.Name != nil && p.Category != nil && p.KeyFeatures != nil &&
		p.TargetAudience != nil && p.ColorPalette != nil && p.Mood != nil
}

func (p analysisPayload) value() ProductAnalysis {
	return ProductAnalysis{
		Name:           *p.Name,
		Category:       *p.Category,
		KeyFeatures:    *p.KeyFeatures,
		TargetAudience: *p.TargetAudience,
		ColorPalette:   *p.ColorPalette,
		Mood:           *p.Mood,
	}
}

type copyPayload struct {
	InstagramCaption *string   `json:"instagram_caption"`
	EmailSubject     *string   `json:"email_subject"`
	AdHeadline       *string   `json:"ad_headline"`
	AdBody           *string   `json:"ad_body"`
	Hashtags         *[]string `json:"hashtags"`
}

var copyKeys = []string{"instagram_caption", "email_subject", "ad_headline", "ad_body", "hashtags"}

func (p copyPayload) complete() bool {
	return p.InstagramCaption != nil && p.EmailSubject != nil && p.AdHeadline != nil &&
		p.AdBody != nil && p.Hashtags != nil
}

func (p copyPayload) value() MarketingCopy {
	return MarketingCopy{
		InstagramCaption: *p.InstagramCaption,
		EmailSubject:     *p.EmailSubject,
		AdHeadline:       *p.AdHeadline,
		AdBody:           *p.AdBody,
		Hashtags:         *p.Hashtags,
	}
}

// decodeReply decodes the object in text into T only when every key is
// present with its exact spelling.
func decodeReply[T any](text string, keys []string) (T, bool) {
	if !jsonutil.HasKeys(jsonutil.Normalize(text), keys...) {
		var zero T
		return zero, false
	}
	return jsonutil.Decode[T](text)
}

// Gateway is the single seam between the service and the remote models.
// It holds no per-request state and is safe for concurrent use.
type Gateway struct {
	backend Backend
}

// NewGateway wraps a configured backend.
func NewGateway(backend Backend) *Gateway {
	return &Gateway{backend: backend}
}

// Backend returns the name of the underlying backend.
func (g *Gateway) Backend() string {
	return g.backend.Name()
}

// AnalyzeImage asks the vision model to describe the product in image.
// If the reply lacks any of the six fields, DefaultProductAnalysis is
// returned in its place.
func (g *Gateway) AnalyzeImage(ctx context.Context, image []byte) (ProductAnalysis, error) {
	format := filehandler.InspectFormat(image)
	if format.Fallback {
		log.Debug().Str("reason", format.Reason).Msg("Image format not recognised, sending as jpeg")
	}

	text, err := g.converse(ctx, "analyze", ConverseRequest{
		Image:       &InlineImage{Data: image, Format: format.Format},
		Prompt:      assets.AnalysisPrompt(),
		MaxTokens:   analysisMaxTokens,
		Temperature: analysisTemperature,
	})
	if err != nil {
		return ProductAnalysis{}, err
	}

	payload, ok := decodeReply[analysisPayload](text, analysisKeys)
	if !ok || !payload.complete() {
		g.recordFallback("analyze", text)
		return DefaultProductAnalysis(), nil
	}
	return payload.value(), nil
}

// GenerateCopy asks the text model for marketing copy about the analysed
// product. If the reply lacks any of the five fields, DefaultMarketingCopy
// is returned in its place.
func (g *Gateway) GenerateCopy(ctx context.Context, analysis ProductAnalysis) (MarketingCopy, error) {
	prompt := assets.CopyPrompt(assets.CopyPromptData{
		Name:           analysis.Name,
		Category:       analysis.Category,
		Features:       analysis.KeyFeatures,
		TargetAudience: analysis.TargetAudience,
	})

	text, err := g.converse(ctx, "copy", ConverseRequest{
		Prompt:      prompt,
		MaxTokens:   copyMaxTokens,
		Temperature: copyTemperature,
	})
	if err != nil {
		return MarketingCopy{}, err
	}

	payload, ok := decodeReply[copyPayload](text, copyKeys)
	if !ok || !payload.complete() {
		g.recordFallback("copy", text)
		return DefaultMarketingCopy(analysis.Name), nil
	}
	return payload.value(), nil
}

// GenerateStyledImage renders the product in the given style preset. The
// source image is offered to backends that can condition on it. A nil
// result without error means the image model returned no image.
func (g *Gateway) GenerateStyledImage(ctx context.Context, image []byte, analysis ProductAnalysis, style assets.Style) (*StyledImage, error) {
	prompt := assets.StylePrompt(style, analysis.Name, analysis.ColorPalette)

	req := ImageRequest{
		Prompt:         prompt.Text,
		NegativePrompt: prompt.NegativeText,
		NumberOfImages: styledImageCount,
		Width:          styledImageSize,
		Height:         styledImageSize,
		CFGScale:       styledImageCFGScale,
	}
	if len(image) > 0 {
		req.SourceImage = &InlineImage{Data: image, Format: filehandler.DetectFormat(image)}
	}

	log.Debug().
		Str("backend", g.backend.Name()).
		Str("style", string(style)).
		Str("prompt", truncateString(prompt.Text, 120)).
		Msg("Requesting styled image")

	start := time.Now()
	data, err := g.backend.GenerateImage(ctx, req)
	g.recordCall("styled_image", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		log.Warn().Str("backend", g.backend.Name()).Msg("Image model returned no image")
		return nil, nil
	}
	return &StyledImage{Data: data, Format: filehandler.DetectFormat(data)}, nil
}

// RefineText rewrites currentText following the user's instruction. The
// reply is returned trimmed and otherwise verbatim.
func (g *Gateway) RefineText(ctx context.Context, currentText, instruction, contextLabel string) (string, error) {
	text, err := g.converse(ctx, "refine", ConverseRequest{
		Prompt:      assets.RefinePrompt(contextLabel, currentText, instruction),
		MaxTokens:   refineMaxTokens,
		Temperature: refineTemperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (g *Gateway) converse(ctx context.Context, operation string, req ConverseRequest) (string, error) {
	log.Debug().
		Str("backend", g.backend.Name()).
		Str("operation", operation).
		Bool("with_image", req.Image != nil).
		Int("prompt_length", len(req.Prompt)).
		Msg("Sending prompt to model")

	start := time.Now()
	text, err := g.backend.Converse(ctx, req)
	duration := time.Since(start)
	g.recordCall(operation, duration, err)
	if err != nil {
		return "", err
	}

	log.Debug().
		Str("operation", operation).
		Int("response_length", len(text)).
		Dur("duration", duration).
		Msg("Received model response")
	return text, nil
}

func (g *Gateway) recordCall(operation string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.New(metrics.Namespace).
		Dimension("Backend", g.backend.Name()).
		Dimension("Operation", operation).
		Duration("ModelLatencyMs", d).
		Count("ModelCallCount").
		Property("result", result).
		Flush()
}

func (g *Gateway) recordFallback(operation, text string) {
	reason := jsonutil.ExtractObject(text).Reason
	if reason == "" {
		reason = "required fields missing"
	}
	log.Debug().
		Str("operation", operation).
		Str("reason", reason).
		Str("response", truncateString(text, 200)).
		Msg("Model reply did not match the expected shape, using defaults")
	metrics.New(metrics.Namespace).
		Dimension("Backend", g.backend.Name()).
		Dimension("Operation", operation).
		Count("ModelFallbackCount").
		Flush()
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
