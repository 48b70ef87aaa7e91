package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ostrander/smithy/internal/events"
	"github.com/ostrander/smithy/internal/models"
	"github.com/ostrander/smithy/internal/pattern"
	"github.com/ostrander/smithy/internal/registry"
)

// IndexHandler holds the index service route handlers.
type IndexHandler struct {
	registry *registry.Store
	patterns *pattern.Engine
	broker   *events.Broker
}

// NewIndexHandler creates the handler set. broker may be nil when the event
// stream is disabled.
func NewIndexHandler(reg *registry.Store, eng *pattern.Engine, broker *events.Broker) *IndexHandler {
	return &IndexHandler{registry: reg, patterns: eng, broker: broker}
}

// NewIndexRouter mounts the index service routes. Health stays outside the
// auth group so probes work without credentials.
func NewIndexRouter(h *IndexHandler, authEnabled bool, token string) chi.Router {
	r := chi.NewRouter()
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))

		r.Route("/components", func(r chi.Router) {
			r.Post("/register", h.RegisterComponent)
			r.Get("/", h.ListComponents)
			r.Get("/stats", h.RegistryStats)
			r.Get("/name/{name}", h.GetComponentByName)
			r.Get("/{id}", h.GetComponent)
			r.Patch("/{id}/deployment", h.UpdateDeployment)
			r.Delete("/{id}", h.DeleteComponent)
		})

		r.Route("/patterns", func(r chi.Router) {
			r.Post("/search", h.SearchPatterns)
			r.Post("/similar", h.SimilarPatterns)
			r.Post("/index", h.ReindexPatterns)
			r.Get("/stats", h.PatternStats)
			r.Get("/{name}", h.GetPattern)
		})

		if h.broker != nil {
			r.Get("/events", h.broker.ServeHTTP)
		}
	})

	return r
}

// Health handles GET /health.
func (h *IndexHandler) Health(w http.ResponseWriter, r *http.Request) {
	pstats, err := h.patterns.Stats()
	if err != nil {
		slog.Error("pattern stats failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"registry": h.registry.Stats(),
		"patterns": pstats,
	})
}

// RegisterComponent handles POST /api/components/register.
func (h *IndexHandler) RegisterComponent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req RegisterComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	rec, err := h.registry.Register(req.record())
	if err != nil {
		writeError(w, err)
		return
	}
	if h.broker != nil {
		h.broker.PublishComponent(events.TypeComponentRegistered, rec.ComponentID, rec.Name)
	}
	writeJSON(w, http.StatusCreated, rec)
}

// ListComponents handles GET /api/components.
func (h *IndexHandler) ListComponents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.registry.List(registry.ListFilter{
		Platform: q.Get("platform"),
		Category: q.Get("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ComponentListResponse{Total: total, Components: items})
}

// RegistryStats handles GET /api/components/stats.
func (h *IndexHandler) RegistryStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Stats())
}

// GetComponent handles GET /api/components/{id}.
func (h *IndexHandler) GetComponent(w http.ResponseWriter, r *http.Request) {
	rec, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GetComponentByName handles GET /api/components/name/{name}. When several
// records share the name, the most recently created wins.
func (h *IndexHandler) GetComponentByName(w http.ResponseWriter, r *http.Request) {
	rec, err := h.registry.GetByName(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// UpdateDeployment handles PATCH /api/components/{id}/deployment?status=X.
func (h *IndexHandler) UpdateDeployment(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if !slices.Contains(models.DeploymentStatuses, status) {
		writeJSON(w, http.StatusBadRequest,
			errorBody(fmt.Sprintf("status must be one of %v", models.DeploymentStatuses)))
		return
	}

	rec, err := h.registry.UpdateDeploymentStatus(chi.URLParam(r, "id"), status)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.broker != nil {
		h.broker.PublishComponent(events.TypeDeploymentUpdated, rec.ComponentID, rec.Name)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"component_id":      rec.ComponentID,
		"deployment_status": status,
		"updated_at":        rec.UpdatedAt,
	})
}

// DeleteComponent handles DELETE /api/components/{id}.
func (h *IndexHandler) DeleteComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.registry.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.registry.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	if h.broker != nil {
		h.broker.PublishComponent(events.TypeComponentDeleted, rec.ComponentID, rec.Name)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"component_id": id,
		"deleted":      true,
	})
}

// SearchPatterns handles POST /api/patterns/search.
func (h *IndexHandler) SearchPatterns(w http.ResponseWriter, r *http.Request) {
	var req PatternSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	matches, err := h.patterns.Search(r.Context(), req.Query, req.NResults, req.Category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, patternResults(matches))
}

// SimilarPatterns handles POST /api/patterns/similar.
func (h *IndexHandler) SimilarPatterns(w http.ResponseWriter, r *http.Request) {
	var req SimilarPatternsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	matches, err := h.patterns.FindSimilar(r.Context(), req.Description, req.Category, req.NResults)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, patternResults(matches))
}

// ReindexPatterns handles POST /api/patterns/index.
func (h *IndexHandler) ReindexPatterns(w http.ResponseWriter, r *http.Request) {
	var req IndexPatternsRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
			return
		}
	}

	count, err := h.patterns.Index(r.Context(), req.ForceReindex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"indexed_count": count,
		"forced":        req.ForceReindex,
	})
}

// PatternStats handles GET /api/patterns/stats.
func (h *IndexHandler) PatternStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.patterns.Stats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetPattern handles GET /api/patterns/{name}.
func (h *IndexHandler) GetPattern(w http.ResponseWriter, r *http.Request) {
	doc, err := h.patterns.GetByName(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func patternResults(matches []pattern.Match) PatternSearchResponse {
	results := make([]PatternResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, PatternResult{
			Name:            m.Document.Name,
			Label:           m.Document.Label,
			Description:     m.Document.Description,
			Category:        m.Document.Category,
			Platform:        m.Document.Platform,
			Version:         m.Document.Version,
			SimilarityScore: m.Score,
		})
	}
	return PatternSearchResponse{Results: results}
}
