package assets

import (
	"fmt"
	"strings"
)

// Style selects the visual treatment of the regenerated product image.
type Style string

const (
	StyleProfessional Style = "professional"
	StyleLuxury       Style = "luxury"
	StylePlayful      Style = "playful"
	StyleMinimal      Style = "minimal"
)

// DefaultStyle is used for empty or unrecognised style names.
const DefaultStyle = StyleProfessional

// Styles lists the presets in display order.
var Styles = []Style{StyleProfessional, StyleLuxury, StylePlayful, StyleMinimal}

// StyleSuffix is appended to every preset.
const StyleSuffix = ", masterpiece, professional color grading, sharp details, no text, no watermarks"

// NegativePrompt lists qualities the image model should avoid for every preset.
const NegativePrompt = "text, watermark, low quality, blurry, distorted, deformed, ugly, bad anatomy, pixelated, grain"

// stylePreset renders the descriptive phrase for one style from the product
// name and its comma-joined colour palette.
type stylePreset func(name, colors string) string

var presets = map[Style]stylePreset{
	StyleProfessional: func(name, colors string) string {
		return fmt.Sprintf("high-end commercial product photography of %s, soft studio lighting, pastel %s background, sharp focus, 8k, highly detailed, advertising standard, rule of thirds, vanilla bean and fruit props, clean composition", name, colors)
	},
	StyleLuxury: func(name, _ string) string {
		return fmt.Sprintf("cinematic 3D render style of %s, dramatic neon lighting, dark elegant background, floating elements, ray tracing, unreal engine 5 render, futuristic, premium advertising, glowing edges", name)
	},
	StylePlayful: func(name, colors string) string {
		return fmt.Sprintf("artistic top-down shot of %s, textured background with smeared %s paint, high contrast, vibrant, pop art style, creative composition, social media trend", name, colors)
	},
	StyleMinimal: func(name, _ string) string {
		return fmt.Sprintf("architectural product photography of %s, pure solid background, hard shadows, geometric composition, design magazine style, 8k resolution", name)
	},
}

// ParseStyle maps a requested style name to a preset by exact match.
// Anything else, including the empty string, selects DefaultStyle.
func ParseStyle(s string) Style {
	style := Style(s)
	if _, ok := presets[style]; ok {
		return style
	}
	return DefaultStyle
}

// StyledPrompt is the text sent to the image model.
type StyledPrompt struct {
	Text         string
	NegativeText string
}

// StylePrompt builds the image generation prompt for a product in the given
// style. Unknown styles render as DefaultStyle.
func StylePrompt(style Style, name string, colors []string) StyledPrompt {
	preset, ok := presets[style]
	if !ok {
		preset = presets[DefaultStyle]
	}
	return StyledPrompt{
		Text:         preset(name, strings.Join(colors, ", ")) + StyleSuffix,
		NegativeText: NegativePrompt,
	}
}
