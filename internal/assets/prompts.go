// Package assets provides the prompt templates sent to the generative models.
//
// Prompt text lives in prompts/*.txt and is embedded at compile time. Style
// presets for the image model are defined in style.go.
package assets

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

// analysisPrompt asks the vision model for the six product analysis fields
// as a bare JSON object.
//
//go:embed prompts/analysis.txt
var analysisPrompt string

//go:embed prompts/copy.txt
var copyTemplate string

//go:embed prompts/refine.txt
var refineTemplate string

var funcs = template.FuncMap{"join": strings.Join}

// Parsed once at init.
var (
	copyPromptTmpl   = template.Must(template.New("copy").Funcs(funcs).Parse(copyTemplate))
	refinePromptTmpl = template.Must(template.New("refine").Parse(refineTemplate))
)

// CopyPromptData holds the product details interpolated into the copy prompt.
type CopyPromptData struct {
	Name           string
	Category       string
	Features       []string
	TargetAudience string
}

// RefinePromptData holds the inputs of a refinement request.
type RefinePromptData struct {
	Context     string
	CurrentText string
	Instruction string
}

// AnalysisPrompt returns the image analysis instruction.
func AnalysisPrompt() string {
	return strings.TrimSpace(analysisPrompt)
}

// CopyPrompt renders the marketing copy instruction for a product. Fields
// are interpolated as given, empty or not.
func CopyPrompt(d CopyPromptData) string {
	return render(copyPromptTmpl, d)
}

// RefinePrompt renders the refinement instruction. The reply is steered to
// be the replacement text only.
func RefinePrompt(contextLabel, currentText, instruction string) string {
	return render(refinePromptTmpl, RefinePromptData{
		Context:     contextLabel,
		CurrentText: currentText,
		Instruction: instruction,
	})
}

func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	// The templates only reference fields that exist on data, so Execute
	// cannot fail here; whatever was rendered is returned regardless.
	_ = tmpl.Execute(&buf, data)
	return strings.TrimSpace(buf.String())
}
