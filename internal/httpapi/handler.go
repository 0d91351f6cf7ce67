// Package httpapi exposes the campaign service over HTTP.
//
// Endpoints:
//
//	GET  /              service banner
//	GET  /health        health check
//	POST /api/campaign  analyse a product photo and generate a campaign
//	POST /api/refine    rewrite one piece of generated text
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog/log"

	"github.com/fpang/adforge/internal/campaign"
)

// MaxBodyBytes bounds request bodies. Base64 photos are large but a campaign
// is one image.
const MaxBodyBytes = 25 << 20

// CampaignService is the behaviour the HTTP layer needs.
// *campaign.Service satisfies it.
type CampaignService interface {
	GenerateCampaign(ctx context.Context, req campaign.Request) (*campaign.Campaign, error)
	Refine(ctx context.Context, req campaign.RefineRequest) (*campaign.RefineResult, error)
}

// Options configures the handler chain.
type Options struct {
	// OriginVerifySecret, when set, is required in the x-origin-verify
	// header of every request.
	OriginVerifySecret string
}

// Handler serves the AdForge API.
type Handler struct {
	svc CampaignService
}

// NewHandler returns the complete middleware-wrapped API handler.
func NewHandler(svc CampaignService, opts Options) http.Handler {
	h := &Handler{svc: svc}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("POST /api/campaign", h.handleCampaign)
	mux.HandleFunc("POST /api/refine", h.handleRefine)

	// Known paths with the wrong method, then everything else.
	mux.HandleFunc("/{$}", methodNotAllowed(http.MethodGet))
	mux.HandleFunc("/health", methodNotAllowed(http.MethodGet))
	mux.HandleFunc("/api/campaign", methodNotAllowed(http.MethodPost))
	mux.HandleFunc("/api/refine", methodNotAllowed(http.MethodPost))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusNotFound, "Not Found")
	})

	var handler http.Handler = gzhttp.GzipHandler(mux)
	handler = withOriginVerify(opts.OriginVerifySecret, handler)
	handler = withCORS(handler)
	handler = withMetrics(handler)
	handler = withLogging(handler)
	return withRequestID(handler)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"name": "AdForge API", "status": "running"})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// campaignBody and refineBody use pointers so a missing field can be
// rejected while an empty string is accepted.
type campaignBody struct {
	Image *string `json:"image"`
	Style *string `json:"style"`
}

type refineBody struct {
	CurrentText      *string `json:"current_text"`
	RefinementPrompt *string `json:"refinement_prompt"`
	Context          *string `json:"context"`
}

func (h *Handler) handleCampaign(w http.ResponseWriter, r *http.Request) {
	var body campaignBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Image == nil {
		httpError(w, http.StatusUnprocessableEntity, "field required: image")
		return
	}

	req := campaign.Request{Image: campaign.EncodedImage(*body.Image)}
	if body.Style != nil {
		req.Style = *body.Style
	}

	result, err := h.svc.GenerateCampaign(r.Context(), req)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Campaign generation failed")
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleRefine(w http.ResponseWriter, r *http.Request) {
	var body refineBody
	if !decodeBody(w, r, &body) {
		return
	}
	switch {
	case body.CurrentText == nil:
		httpError(w, http.StatusUnprocessableEntity, "field required: current_text")
		return
	case body.RefinementPrompt == nil:
		httpError(w, http.StatusUnprocessableEntity, "field required: refinement_prompt")
		return
	case body.Context == nil:
		httpError(w, http.StatusUnprocessableEntity, "field required: context")
		return
	}

	result, err := h.svc.Refine(r.Context(), campaign.RefineRequest{
		CurrentText:      *body.CurrentText,
		RefinementPrompt: *body.RefinementPrompt,
		Context:          *body.Context,
	})
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Refinement failed")
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// decodeBody reads a JSON body into v, writing the error response itself
// when it fails.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		httpError(w, http.StatusUnprocessableEntity, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("Failed to write response body")
	}
}

func methodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		httpError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

func httpError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}
