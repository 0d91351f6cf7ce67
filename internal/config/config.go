// Package config loads process configuration from the environment, with an
// optional .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/fpang/adforge/internal/chat"
)

// Defaults.
const (
	DefaultBackend = chat.BackendBedrock
	DefaultRegion  = "us-east-1"
	DefaultPort    = 8000
)

// Config holds every setting the entry points need.
type Config struct {
	// Backend selects the model provider: "bedrock" or "gemini".
	Backend string
	Region  string

	// Static AWS credentials. When AccessKeyID is empty the SDK default
	// credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// Model overrides. Empty selects the backend default.
	TextModel  string
	ImageModel string

	GeminiAPIKey      string
	GeminiAPIKeyParam string

	OriginVerifySecret string
	OriginVerifyParam  string

	Port int
}

// Load reads .env (if present) and then the environment, and validates the
// result. Variables already set in the environment win over .env entries.
func Load() (Config, error) {
	cfg, err := FromEnvFile()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnvFile is Load without validation, for callers that apply overrides
// (command-line flags) before validating.
func FromEnvFile() (Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load .env: %w", err)
		}
		log.Debug().Msg(".env file not found, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables without validating it.
func FromEnv() (Config, error) {
	cfg := Config{
		Backend:            strings.ToLower(getEnv("ADFORGE_BACKEND", DefaultBackend)),
		Region:             getEnv("AWS_REGION", DefaultRegion),
		AccessKeyID:        os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:       os.Getenv("AWS_SESSION_TOKEN"),
		TextModel:          os.Getenv("ADFORGE_TEXT_MODEL"),
		ImageModel:         os.Getenv("ADFORGE_IMAGE_MODEL"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiAPIKeyParam:  os.Getenv("SSM_GEMINI_API_KEY_PARAM"),
		OriginVerifySecret: os.Getenv("ORIGIN_VERIFY_SECRET"),
		OriginVerifyParam:  os.Getenv("SSM_ORIGIN_VERIFY_PARAM"),
		Port:               DefaultPort,
	}

	if p := os.Getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", p, err)
		}
		cfg.Port = port
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c Config) Validate() error {
	switch c.Backend {
	case chat.BackendBedrock, chat.BackendGemini:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, chat.BackendBedrock, chat.BackendGemini)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.AccessKeyID != "" && c.SecretAccessKey == "" {
		return errors.New("AWS_ACCESS_KEY_ID is set but AWS_SECRET_ACCESS_KEY is empty")
	}
	return nil
}

// TextModelID returns the configured text model or the backend default.
func (c Config) TextModelID() string {
	if c.TextModel != "" {
		return c.TextModel
	}
	return chat.DefaultTextModel(c.Backend)
}

// ImageModelID returns the configured image model or the backend default.
func (c Config) ImageModelID() string {
	if c.ImageModel != "" {
		return c.ImageModel
	}
	return chat.DefaultImageModel(c.Backend)
}

// HasStaticCredentials reports whether explicit AWS keys were supplied.
func (c Config) HasStaticCredentials() bool {
	return c.AccessKeyID != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
