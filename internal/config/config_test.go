package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fpang/adforge/internal/chat"
)

var configEnv = []string{
	"ADFORGE_BACKEND", "AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
	"AWS_SESSION_TOKEN", "ADFORGE_TEXT_MODEL", "ADFORGE_IMAGE_MODEL", "GEMINI_API_KEY",
	"SSM_GEMINI_API_KEY_PARAM", "ORIGIN_VERIFY_SECRET", "SSM_ORIGIN_VERIFY_PARAM", "PORT",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.Backend != chat.BackendBedrock || cfg.Region != "us-east-1" || cfg.Port != 8000 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.TextModelID() != chat.ModelNovaLite || cfg.ImageModelID() != chat.ModelNovaCanvas {
		t.Errorf("models = %s / %s", cfg.TextModelID(), cfg.ImageModelID())
	}
	if cfg.HasStaticCredentials() {
		t.Error("no static credentials expected")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADFORGE_BACKEND", "Gemini")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("ADFORGE_TEXT_MODEL", "gemini-2.5-pro")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("PORT", "9090")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.Backend != chat.BackendGemini {
		t.Errorf("Backend = %q, want gemini", cfg.Backend)
	}
	if cfg.Region != "eu-west-1" || cfg.Port != 9090 || cfg.GeminiAPIKey != "k" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.TextModelID() != "gemini-2.5-pro" {
		t.Errorf("TextModelID() = %q", cfg.TextModelID())
	}
	if cfg.ImageModelID() != chat.ModelGemini25FlashImage {
		t.Errorf("ImageModelID() = %q", cfg.ImageModelID())
	}
}

func TestFromEnv_BadPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "eighty")
	if _, err := FromEnv(); err == nil {
		t.Error("expected an error for a non-numeric PORT")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"bedrock", Config{Backend: "bedrock", Port: 8000}, false},
		{"gemini", Config{Backend: "gemini", Port: 1}, false},
		{"unknown backend", Config{Backend: "openai", Port: 8000}, true},
		{"port zero", Config{Backend: "bedrock", Port: 0}, true},
		{"port too large", Config{Backend: "bedrock", Port: 70000}, true},
		{"half static credentials", Config{Backend: "bedrock", Port: 8000, AccessKeyID: "AKIA"}, true},
		{"static credentials", Config{Backend: "bedrock", Port: 8000, AccessKeyID: "AKIA", SecretAccessKey: "s"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ADFORGE_BACKEND=gemini\nPORT=7000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Cleanup(func() {
		os.Unsetenv("ADFORGE_BACKEND")
		os.Unsetenv("PORT")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend != chat.BackendGemini || cfg.Port != 7000 {
		t.Errorf("cfg = %+v, want values from .env", cfg)
	}
}

func TestLoad_NoDotEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	if _, err := Load(); err != nil {
		t.Errorf("Load() without .env error = %v", err)
	}
}
