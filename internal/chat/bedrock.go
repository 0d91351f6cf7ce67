package chat

// bedrock.go talks to Amazon Bedrock: the Converse API for the multimodal
// text model and InvokeModel with a Nova Canvas JSON body for images.

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/rs/zerolog/log"

	"github.com/fpang/adforge/internal/filehandler"
)

// RuntimeAPI is the subset of *bedrockruntime.Client used by BedrockBackend.
type RuntimeAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockBackend implements Backend on Amazon Bedrock.
type BedrockBackend struct {
	client     RuntimeAPI
	textModel  string
	imageModel string
}

// NewBedrockBackend creates a backend from a configured runtime client.
// Empty model IDs select the Nova defaults.
func NewBedrockBackend(client RuntimeAPI, textModel, imageModel string) *BedrockBackend {
	if textModel == "" {
		textModel = ModelNovaLite
	}
	if imageModel == "" {
		imageModel = ModelNovaCanvas
	}
	return &BedrockBackend{client: client, textModel: textModel, imageModel: imageModel}
}

// Name implements Backend.
func (b *BedrockBackend) Name() string {
	return BackendBedrock
}

// Converse implements Backend using the Bedrock Converse API.
func (b *BedrockBackend) Converse(ctx context.Context, req ConverseRequest) (string, error) {
	var content []types.ContentBlock
	if req.Image != nil {
		content = append(content, &types.ContentBlockMemberImage{
			Value: types.ImageBlock{
				Format: bedrockImageFormat(req.Image.Format),
				Source: &types.ImageSourceMemberBytes{Value: req.Image.Data},
			},
		})
	}
	content = append(content, &types.ContentBlockMemberText{Value: req.Prompt})

	out, err := b.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(b.textModel),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: content,
		}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(req.MaxTokens),
			Temperature: aws.Float32(req.Temperature),
		},
	})
	if err != nil {
		return "", fmt.Errorf("bedrock converse (%s): %w", b.textModel, err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("bedrock converse (%s): %w", b.textModel, ErrEmptyResponse)
	}
	// The reply text is the first text block of the assistant message.
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			return text.Value, nil
		}
	}
	return "", fmt.Errorf("bedrock converse (%s): %w", b.textModel, ErrEmptyResponse)
}

// --- Nova Canvas request/response types ---

type canvasRequest struct {
	TaskType              string                 `json:"taskType"`
	TextToImageParams     canvasTextToImage      `json:"textToImageParams"`
	ImageGenerationConfig canvasGenerationConfig `json:"imageGenerationConfig"`
}

type canvasTextToImage struct {
	Text         string `json:"text"`
	NegativeText string `json:"negativeText,omitempty"`
}

type canvasGenerationConfig struct {
	NumberOfImages int     `json:"numberOfImages"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	CFGScale       float64 `json:"cfgScale"`
}

type canvasResponse struct {
	Images []string `json:"images"`
	Error  string   `json:"error,omitempty"`
}

// GenerateImage implements Backend with a Nova Canvas TEXT_IMAGE task and
// returns the first decoded image.
func (b *BedrockBackend) GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error) {
	body, err := json.Marshal(canvasRequest{
		TaskType: "TEXT_IMAGE",
		TextToImageParams: canvasTextToImage{
			Text:         req.Prompt,
			NegativeText: req.NegativePrompt,
		},
		ImageGenerationConfig: canvasGenerationConfig{
			NumberOfImages: req.NumberOfImages,
			Height:         req.Height,
			Width:          req.Width,
			CFGScale:       req.CFGScale,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal image request: %w", err)
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.imageModel),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock invoke model (%s): %w", b.imageModel, err)
	}

	var resp canvasResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("decode image response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("bedrock image model (%s): %s", b.imageModel, resp.Error)
	}
	if len(resp.Images) == 0 {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(resp.Images[0]))
	if err != nil {
		return nil, fmt.Errorf("decode generated image: %w", err)
	}
	log.Debug().Int("image_bytes", len(data)).Int("images_returned", len(resp.Images)).Msg("Nova Canvas image decoded")
	return data, nil
}

func bedrockImageFormat(f filehandler.Format) types.ImageFormat {
	if f == filehandler.FormatPNG {
		return types.ImageFormatPng
	}
	return types.ImageFormatJpeg
}
