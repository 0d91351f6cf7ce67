package filehandler

import (
	"bytes"
	"encoding/base64"
)

// Format is the encoding of an uploaded product photo as understood by the
// image models. Only JPEG and PNG are distinguished; everything else is sent
// as JPEG.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// DefaultFormat is used whenever the signature is not recognised.
const DefaultFormat = FormatJPEG

var (
	jpegSignature = []byte{0xFF, 0xD8, 0xFF}
	pngSignature  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
)

// MIMEType returns the MIME type for the format.
func (f Format) MIMEType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/jpeg"
}

// Extension returns the file extension (with dot) for the format.
func (f Format) Extension() string {
	if f == FormatPNG {
		return ".png"
	}
	return ".jpg"
}

// FormatResult records how a format was determined. Fallback is true when
// the signature was not recognised and DefaultFormat was substituted.
type FormatResult struct {
	Format   Format
	Fallback bool
	Reason   string
}

// InspectFormat classifies raw image bytes by their leading signature.
func InspectFormat(data []byte) FormatResult {
	switch {
	case bytes.HasPrefix(data, jpegSignature):
		return FormatResult{Format: FormatJPEG}
	case bytes.HasPrefix(data, pngSignature):
		return FormatResult{Format: FormatPNG}
	case len(data) == 0:
		return FormatResult{Format: DefaultFormat, Fallback: true, Reason: "empty image data"}
	default:
		return FormatResult{Format: DefaultFormat, Fallback: true, Reason: "unrecognised signature"}
	}
}

// InspectFormatBase64 decodes standard base64 text and classifies the result.
// A decode failure yields DefaultFormat.
func InspectFormatBase64(encoded string) FormatResult {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return FormatResult{Format: DefaultFormat, Fallback: true, Reason: "base64 decode failed: " + err.Error()}
	}
	return InspectFormat(data)
}

// DetectFormat returns the format of raw image bytes. It never fails:
// unrecognised input is reported as JPEG.
func DetectFormat(data []byte) Format {
	return InspectFormat(data).Format
}

// DetectFormatBase64 is DetectFormat for base64-encoded input.
func DetectFormatBase64(encoded string) Format {
	return InspectFormatBase64(encoded).Format
}
