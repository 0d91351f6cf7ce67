package campaign

import (
	"context"
	"encoding/base64"
	"errors"
	"reflect"
	"testing"

	"github.com/fpang/adforge/internal/assets"
	"github.com/fpang/adforge/internal/chat"
	"github.com/fpang/adforge/internal/filehandler"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0x01}
var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x02}

// fakeGenerator records which operations ran and with what.
type fakeGenerator struct {
	analysis   chat.ProductAnalysis
	analyzeErr error
	copy       chat.MarketingCopy
	copyErr    error
	styled     *chat.StyledImage
	styledErr  error
	refined    string
	refineErr  error

	calls       []string
	gotImage    []byte
	gotStyle    assets.Style
	gotAnalysis chat.ProductAnalysis
	gotRefine   [3]string
}

func (f *fakeGenerator) AnalyzeImage(_ context.Context, image []byte) (chat.ProductAnalysis, error) {
	f.calls = append(f.calls, "analyze")
	f.gotImage = image
	return f.analysis, f.analyzeErr
}

func (f *fakeGenerator) GenerateCopy(_ context.Context, analysis chat.ProductAnalysis) (chat.MarketingCopy, error) {
	f.calls = append(f.calls, "copy")
	f.gotAnalysis = analysis
	return f.copy, f.copyErr
}

func (f *fakeGenerator) GenerateStyledImage(_ context.Context, image []byte, analysis chat.ProductAnalysis, style assets.Style) (*chat.StyledImage, error) {
	f.calls = append(f.calls, "style")
	f.gotStyle = style
	return f.styled, f.styledErr
}

func (f *fakeGenerator) RefineText(_ context.Context, currentText, instruction, contextLabel string) (string, error) {
	f.calls = append(f.calls, "refine")
	f.gotRefine = [3]string{currentText, instruction, contextLabel}
	return f.refined, f.refineErr
}

func encode(b []byte) EncodedImage {
	return EncodedImage(base64.StdEncoding.EncodeToString(b))
}

func TestGenerateCampaign_Assembles(t *testing.T) {
	gen := &fakeGenerator{
		analysis: chat.ProductAnalysis{Name: "Mug", ColorPalette: []string{"#fff"}},
		copy:     chat.MarketingCopy{AdHeadline: "Mug"},
		styled:   &chat.StyledImage{Data: pngBytes, Format: filehandler.FormatPNG},
	}
	svc := NewService(gen)
	img := encode(jpegBytes)

	got, err := svc.GenerateCampaign(context.Background(), Request{Image: img, Style: "luxury"})
	if err != nil {
		t.Fatalf("GenerateCampaign() error = %v", err)
	}

	if !reflect.DeepEqual(gen.calls, []string{"analyze", "copy", "style"}) {
		t.Errorf("call order = %v", gen.calls)
	}
	if !reflect.DeepEqual(gen.gotImage, jpegBytes) {
		t.Errorf("analysis got %v, want decoded request image", gen.gotImage)
	}
	if gen.gotAnalysis.Name != "Mug" {
		t.Errorf("copy got analysis %+v", gen.gotAnalysis)
	}
	if gen.gotStyle != assets.StyleLuxury {
		t.Errorf("style = %q, want luxury", gen.gotStyle)
	}

	if got.ProductAnalysis.Name != "Mug" || got.MarketingCopy.AdHeadline != "Mug" {
		t.Errorf("campaign = %+v", got)
	}
	if got.StyledImage == nil || *got.StyledImage != base64.StdEncoding.EncodeToString(pngBytes) {
		t.Errorf("styled image = %v", got.StyledImage)
	}
	if got.StyledImageFormat != filehandler.FormatPNG {
		t.Errorf("styled format = %q", got.StyledImageFormat)
	}
	if got.OriginalImage == nil || *got.OriginalImage != string(img) {
		t.Errorf("original image not echoed")
	}
}

func TestGenerateCampaign_DefaultStyle(t *testing.T) {
	for _, style := range []string{"", "vaporwave"} {
		gen := &fakeGenerator{}
		if _, err := NewService(gen).GenerateCampaign(context.Background(), Request{Image: encode(jpegBytes), Style: style}); err != nil {
			t.Fatal(err)
		}
		if gen.gotStyle != assets.StyleProfessional {
			t.Errorf("style %q resolved to %q, want professional", style, gen.gotStyle)
		}
	}
}

func TestGenerateCampaign_NoStyledImage(t *testing.T) {
	got, err := NewService(&fakeGenerator{}).GenerateCampaign(context.Background(), Request{Image: encode(jpegBytes)})
	if err != nil {
		t.Fatal(err)
	}
	if got.StyledImage != nil {
		t.Errorf("styled image = %v, want nil", *got.StyledImage)
	}
}

func TestGenerateCampaign_FailFast(t *testing.T) {
	boom := errors.New("service unavailable")

	tests := []struct {
		name      string
		gen       *fakeGenerator
		wantCalls []string
	}{
		{"analysis fails", &fakeGenerator{analyzeErr: boom}, []string{"analyze"}},
		{"copy fails", &fakeGenerator{copyErr: boom}, []string{"analyze", "copy"}},
		{"style fails", &fakeGenerator{styledErr: boom}, []string{"analyze", "copy", "style"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewService(tt.gen).GenerateCampaign(context.Background(), Request{Image: encode(jpegBytes)})
			if !errors.Is(err, boom) {
				t.Errorf("error = %v, want %v", err, boom)
			}
			if got != nil {
				t.Errorf("expected no partial campaign, got %+v", got)
			}
			if !reflect.DeepEqual(tt.gen.calls, tt.wantCalls) {
				t.Errorf("calls = %v, want %v", tt.gen.calls, tt.wantCalls)
			}
		})
	}
}

func TestGenerateCampaign_InvalidImage(t *testing.T) {
	gen := &fakeGenerator{}
	_, err := NewService(gen).GenerateCampaign(context.Background(), Request{Image: "not base64!!"})
	if !errors.Is(err, ErrInvalidImage) {
		t.Errorf("error = %v, want ErrInvalidImage", err)
	}
	if len(gen.calls) != 0 {
		t.Errorf("no model call expected, got %v", gen.calls)
	}
}

func TestEncodedImage_Format(t *testing.T) {
	tests := []struct {
		img  EncodedImage
		want filehandler.Format
	}{
		{encode(pngBytes), filehandler.FormatPNG},
		{encode(jpegBytes), filehandler.FormatJPEG},
		{encode([]byte("GIF89a")), filehandler.FormatJPEG},
		{"%%%", filehandler.FormatJPEG},
	}
	for _, tt := range tests {
		if got := tt.img.Format(); got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.img, got, tt.want)
		}
	}
}

func TestRefine(t *testing.T) {
	gen := &fakeGenerator{refined: "Shorter."}
	got, err := NewService(gen).Refine(context.Background(), RefineRequest{
		CurrentText:      "A much longer caption.",
		RefinementPrompt: "make it shorter",
		Context:          "instagram_caption",
	})
	if err != nil {
		t.Fatalf("Refine() error = %v", err)
	}
	if got.RefinedText != "Shorter." {
		t.Errorf("RefinedText = %q", got.RefinedText)
	}
	if gen.gotRefine != [3]string{"A much longer caption.", "make it shorter", "instagram_caption"} {
		t.Errorf("refine args = %v", gen.gotRefine)
	}
}

func TestRefine_Error(t *testing.T) {
	boom := errors.New("timeout")
	if _, err := NewService(&fakeGenerator{refineErr: boom}).Refine(context.Background(), RefineRequest{}); !errors.Is(err, boom) {
		t.Errorf("Refine() error = %v, want %v", err, boom)
	}
}
