package chat

// Model IDs
//
// | Backend | Role          | Model ID                  |
// |---------|---------------|---------------------------|
// | bedrock | text / vision | amazon.nova-lite-v1:0     |
// | bedrock | image         | amazon.nova-canvas-v1:0   |
// | gemini  | text / vision | gemini-2.5-flash          |
// | gemini  | image         | gemini-2.5-flash-image    |
const (
	// ModelNovaLite is Amazon Nova Lite, a low-cost multimodal model.
	ModelNovaLite = "amazon.nova-lite-v1:0"

	// ModelNovaCanvas is Amazon Nova Canvas, a text-to-image model.
	ModelNovaCanvas = "amazon.nova-canvas-v1:0"

	// ModelGemini25Flash is stable, balanced performance.
	ModelGemini25Flash = "gemini-2.5-flash"

	// ModelGemini25FlashImage generates images inline.
	ModelGemini25FlashImage = "gemini-2.5-flash-image"
)

// Backend names accepted by configuration.
const (
	BackendBedrock = "bedrock"
	BackendGemini  = "gemini"
)

// DefaultTextModel returns the text/vision model for a backend.
func DefaultTextModel(backend string) string {
	if backend == BackendGemini {
		return ModelGemini25Flash
	}
	return ModelNovaLite
}

// DefaultImageModel returns the image generation model for a backend.
func DefaultImageModel(backend string) string {
	if backend == BackendGemini {
		return ModelGemini25FlashImage
	}
	return ModelNovaCanvas
}
