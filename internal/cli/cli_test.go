package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fpang/adforge/internal/auth"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.5s"},
		{59 * time.Second, "59.0s"},
		{61 * time.Second, "1:01"},
		{12*time.Minute + 5*time.Second, "12:05"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.d); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestPromptLine(t *testing.T) {
	var out bytes.Buffer
	got := PromptLine(strings.NewReader("  make it rhyme \n"), &out, "How?", "")
	if got != "make it rhyme" {
		t.Errorf("PromptLine() = %q", got)
	}
	if out.String() != "How?: " {
		t.Errorf("prompt written = %q", out.String())
	}
}

func TestPromptLine_Default(t *testing.T) {
	var out bytes.Buffer
	if got := PromptLine(strings.NewReader("\n"), &out, "Style", "professional"); got != "professional" {
		t.Errorf("PromptLine() = %q, want default", got)
	}
	if out.String() != "Style [professional]: " {
		t.Errorf("prompt written = %q", out.String())
	}
	if got := PromptLine(strings.NewReader(""), &out, "Style", "minimal"); got != "minimal" {
		t.Errorf("PromptLine() on EOF = %q, want default", got)
	}
}

func TestPromptLine_NoTrailingNewline(t *testing.T) {
	if got := PromptLine(strings.NewReader("shorter"), &bytes.Buffer{}, "How?", ""); got != "shorter" {
		t.Errorf("PromptLine() = %q", got)
	}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadImageFile(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0x00}
	path := writeFile(t, "mug.png", png)

	data, abs, err := ReadImageFile(path)
	if err != nil {
		t.Fatalf("ReadImageFile() error = %v", err)
	}
	if !bytes.Equal(data, png) {
		t.Errorf("data = %v", data)
	}
	if !filepath.IsAbs(abs) {
		t.Errorf("path %q is not absolute", abs)
	}
}

func TestReadImageFile_Rejects(t *testing.T) {
	tests := map[string]string{
		"missing":   filepath.Join(t.TempDir(), "nope.jpg"),
		"directory": t.TempDir(),
		"not image": writeFile(t, "notes.txt", []byte("hello")),
		"empty":     writeFile(t, "empty.jpg", nil),
	}
	for name, path := range tests {
		if _, _, err := ReadImageFile(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestCredentialHint(t *testing.T) {
	if hint := CredentialHint(errors.New("plain")); hint != "" {
		t.Errorf("CredentialHint(plain) = %q, want empty", hint)
	}
	missing := &auth.CredentialError{Kind: auth.KindMissing, Message: "no key"}
	if hint := CredentialHint(missing); !strings.Contains(hint, "GEMINI_API_KEY") {
		t.Errorf("CredentialHint(missing) = %q", hint)
	}
	quota := &auth.CredentialError{Kind: auth.KindQuota, Message: "slow down"}
	if hint := CredentialHint(quota); !strings.Contains(hint, "quota") {
		t.Errorf("CredentialHint(quota) = %q", hint)
	}
}
