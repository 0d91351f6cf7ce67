// Package cli holds helpers for the adforge command line.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fpang/adforge/internal/auth"
	"github.com/fpang/adforge/internal/filehandler"
)

// MaxImageBytes is the largest photo the CLI will upload. Base64 grows it by
// a third, which keeps it under the HTTP body limit.
const MaxImageBytes = 18 << 20

// ReadImageFile checks that path is a regular JPEG or PNG file of
// acceptable size and returns its bytes and absolute path.
func ReadImageFile(path string) ([]byte, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("image not found: %s", path)
		}
		return nil, "", fmt.Errorf("failed to access %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, "", fmt.Errorf("%s is a directory, not an image", path)
	}
	if info.Size() > MaxImageBytes {
		return nil, "", fmt.Errorf("%s is %d bytes; the limit is %d", path, info.Size(), MaxImageBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if result := filehandler.InspectFormat(data); result.Fallback {
		return nil, "", fmt.Errorf("%s does not look like a JPEG or PNG (%s)", path, result.Reason)
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return data, path, nil
}

// CredentialHint turns a credential failure into advice for the user.
// Other errors yield an empty string.
func CredentialHint(err error) string {
	var credErr *auth.CredentialError
	if !errors.As(err, &credErr) {
		return ""
	}
	switch credErr.Kind {
	case auth.KindMissing:
		return "No Gemini API key configured. Set GEMINI_API_KEY or SSM_GEMINI_API_KEY_PARAM, or use --backend bedrock"
	case auth.KindInvalid:
		return "The Gemini API key was rejected. Check the key and try again"
	case auth.KindNetwork:
		return "Could not reach the Gemini API. Check your internet connection"
	case auth.KindQuota:
		return "Gemini API quota exceeded. Try again later or check your usage limits"
	default:
		return "Gemini API key validation failed"
	}
}
