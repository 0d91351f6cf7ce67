package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/adforge/internal/chat"
	"github.com/fpang/adforge/internal/metrics"
)

// ValidateGeminiKey makes one minimal request against model to confirm the
// key behind models works. Failures are returned as *CredentialError.
func ValidateGeminiKey(ctx context.Context, models chat.ContentGenerator, model string) error {
	log.Debug().Str("model", model).Msg("Validating Gemini API key")

	start := time.Now()
	resp, err := models.GenerateContent(ctx, model, genai.Text("hi"), nil)
	elapsed := time.Since(start)

	var result error
	switch {
	case err != nil:
		result = classifyError(err)
	case resp == nil || len(resp.Candidates) == 0:
		result = &CredentialError{Kind: KindUnknown, Message: "API returned empty response"}
	}

	kind := "success"
	var credErr *CredentialError
	if errors.As(result, &credErr) {
		kind = credErr.Kind.String()
	}
	metrics.New(metrics.Namespace).
		Dimension("Result", kind).
		Duration("CredentialValidationMs", elapsed).
		Count("CredentialValidationResult").
		Flush()

	if result != nil {
		log.Error().Err(result).Str("result", kind).Msg("Gemini API key validation failed")
		return result
	}
	log.Info().Dur("duration", elapsed).Msg("Gemini API key validated")
	return nil
}

// classifyError maps a Gemini error onto a CredentialError.
func classifyError(err error) *CredentialError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyAPIError(*apiErrPtr, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key not valid") ||
		strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "api_key_invalid") ||
		strings.Contains(msg, "permission denied"):
		return &CredentialError{Kind: KindInvalid, Message: "API key is invalid or has been revoked", Err: err}

	case strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "rate limit"):
		return &CredentialError{Kind: KindQuota, Message: "API quota exceeded or rate limited", Err: err}

	case strings.Contains(msg, "connection") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "dial") ||
		strings.Contains(msg, "no such host"):
		return &CredentialError{Kind: KindNetwork, Message: "network error reaching the Gemini API", Err: err}

	default:
		return &CredentialError{Kind: KindUnknown, Message: "failed to validate API key", Err: err}
	}
}

func classifyAPIError(apiErr genai.APIError, err error) *CredentialError {
	switch apiErr.Code {
	case 400, 401, 403:
		return &CredentialError{Kind: KindInvalid, Message: "API key is invalid, expired, or lacks permissions", Err: err}
	case 429:
		return &CredentialError{Kind: KindQuota, Message: "API rate limit exceeded", Err: err}
	case 500, 502, 503, 504:
		return &CredentialError{Kind: KindNetwork, Message: "Gemini API server error", Err: err}
	default:
		return &CredentialError{Kind: KindUnknown, Message: apiErr.Message, Err: err}
	}
}
