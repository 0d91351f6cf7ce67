// Package auth resolves and validates the credentials for the Gemini backend.
package auth

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".adforge"
	credentialFile = "gemini-api-key.gpg"
)

// CredentialKind categorizes credential failures.
type CredentialKind int

const (
	// KindMissing indicates no credential was found.
	KindMissing CredentialKind = iota
	// KindInvalid indicates the credential was rejected by the service.
	KindInvalid
	// KindNetwork indicates the service could not be reached.
	KindNetwork
	// KindQuota indicates the account is rate limited or out of quota.
	KindQuota
	// KindUnknown indicates any other failure.
	KindUnknown
)

func (k CredentialKind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindInvalid:
		return "invalid"
	case KindNetwork:
		return "network_error"
	case KindQuota:
		return "quota"
	default:
		return "unknown"
	}
}

// CredentialError is returned by key resolution and validation.
type CredentialError struct {
	Kind    CredentialKind
	Message string
	Err     error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// GeminiAPIKey returns the Gemini API key from, in order:
//  1. the explicit key (typically config's GEMINI_API_KEY, possibly loaded from SSM)
//  2. a GPG-encrypted file at ~/.adforge/gemini-api-key.gpg
func GeminiAPIKey(explicit string) (string, error) {
	if explicit != "" {
		log.Debug().Msg("Using Gemini API key from configuration")
		return explicit, nil
	}

	key, err := fromGPG()
	if err == nil && key != "" {
		log.Debug().Msg("Using Gemini API key from GPG encrypted file")
		return key, nil
	}

	return "", &CredentialError{
		Kind:    KindMissing,
		Message: "Gemini API key not found; set GEMINI_API_KEY or SSM_GEMINI_API_KEY_PARAM",
		Err:     err,
	}
}

// fromGPG decrypts the API key from the GPG-encrypted credentials file.
func fromGPG() (string, error) {
	credPath, err := credentialPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(credPath); os.IsNotExist(err) {
		return "", fmt.Errorf("GPG credentials file not found at %s", credPath)
	}

	log.Debug().Str("file", credPath).Msg("Decrypting GPG credentials")
	output, err := exec.Command("gpg", "--decrypt", "--quiet", credPath).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("GPG decryption failed: %s", string(exitErr.Stderr))
		}
		return "", fmt.Errorf("GPG decryption failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

func credentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, credentialDir, credentialFile), nil
}
