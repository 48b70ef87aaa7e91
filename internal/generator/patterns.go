package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ostrander/smithy/internal/models"
)

// PatternMatch is a similar reference component returned by the index
// service (or an in-process engine in tests).
type PatternMatch struct {
	ComponentID     string  `json:"component_id"`
	Name            string  `json:"name"`
	Label           string  `json:"label"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	SimilarityScore float64 `json:"similarity_score"`
}

// PatternSource retrieves similar reference components. It is an optional
// enhancement: callers must treat failures as a quality degradation, never
// as a generation blocker.
type PatternSource interface {
	FindSimilar(ctx context.Context, description, category string, n int) ([]PatternMatch, error)
}

// HTTPPatternSource talks to the index service's pattern API.
type HTTPPatternSource struct {
	baseURL string
	client  *http.Client
}

var _ PatternSource = (*HTTPPatternSource)(nil)

// NewHTTPPatternSource creates a client for the index service at baseURL
// (e.g. "http://component-index:8086").
func NewHTTPPatternSource(baseURL string, client *http.Client) *HTTPPatternSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPPatternSource{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// FindSimilar posts to /api/patterns/similar and decodes the ranked results.
func (s *HTTPPatternSource) FindSimilar(ctx context.Context, description, category string, n int) ([]PatternMatch, error) {
	payload, err := json.Marshal(map[string]any{
		"description": description,
		"category":    category,
		"n_results":   n,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/api/patterns/similar", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pattern service returned status %d", resp.StatusCode)
	}

	var body struct {
		Results []PatternMatch `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Results, nil
}

// similarQuery builds the retrieval description from a spec: its free-text
// description plus the first few requirements.
func similarQuery(spec *models.ComponentSpec) string {
	parts := []string{spec.Description}
	for i, req := range spec.Requirements {
		if i == 3 {
			break
		}
		parts = append(parts, req)
	}
	return strings.Join(parts, ". ")
}

// similarCategory maps the catch-all category to "no filter".
func similarCategory(spec *models.ComponentSpec) string {
	if spec.Category == "custom" {
		return ""
	}
	return spec.Category
}
