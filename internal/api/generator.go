package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ostrander/smithy/internal/generator"
)

// GeneratorHandler holds the generator service route handlers.
type GeneratorHandler struct {
	orchestrator *generator.Orchestrator
}

// NewGeneratorHandler creates the handler set.
func NewGeneratorHandler(o *generator.Orchestrator) *GeneratorHandler {
	return &GeneratorHandler{orchestrator: o}
}

// NewGeneratorRouter mounts the generator service routes.
func NewGeneratorRouter(h *GeneratorHandler, authEnabled bool, token string) chi.Router {
	r := chi.NewRouter()
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))

		r.Post("/generate", h.Generate)
		r.Post("/generate/sample", h.GenerateSample)
		r.Post("/assess", h.Assess)
	})

	return r
}

// Health handles GET /health.
func (h *GeneratorHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
}

// Generate handles POST /api/generate.
func (h *GeneratorHandler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	result, err := h.orchestrator.Generate(r.Context(), req.SpecYAML)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GenerateSample handles POST /api/generate/sample.
func (h *GeneratorHandler) GenerateSample(w http.ResponseWriter, r *http.Request) {
	result, err := h.orchestrator.GenerateSample(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Assess handles POST /api/assess.
func (h *GeneratorHandler) Assess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	assessment, err := h.orchestrator.Assess(r.Context(), req.SpecYAML)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}
