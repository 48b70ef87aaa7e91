package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ostrander/smithy/internal/models"
)

// RegisterComponentRequest is the request body for registering a component.
type RegisterComponentRequest struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"display_name"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	Platform         string   `json:"platform"`
	Version          string   `json:"version"`
	Author           string   `json:"author"`
	CodeSize         int      `json:"code_size"`
	Dependencies     []string `json:"dependencies"`
	ValidationPassed bool     `json:"validation_passed"`
}

// Validate implements request validation.
func (r RegisterComponentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.DisplayName, validation.Required),
		validation.Field(&r.Category, validation.Required),
		validation.Field(&r.CodeSize, validation.Min(0)),
	)
}

func (r RegisterComponentRequest) record() models.ComponentRecord {
	return models.ComponentRecord{
		Name:             r.Name,
		DisplayName:      r.DisplayName,
		Description:      r.Description,
		Category:         r.Category,
		Platform:         r.Platform,
		Version:          r.Version,
		Author:           r.Author,
		CodeSize:         r.CodeSize,
		Dependencies:     r.Dependencies,
		ValidationPassed: r.ValidationPassed,
	}
}

// ComponentListResponse wraps paginated component listings.
type ComponentListResponse struct {
	Total      int                      `json:"total"`
	Components []models.ComponentRecord `json:"components"`
}

// PatternSearchRequest is the request body for semantic pattern search.
type PatternSearchRequest struct {
	Query    string `json:"query"`
	NResults int    `json:"n_results"`
	Category string `json:"category"`
}

// Validate implements request validation.
func (r PatternSearchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Query, validation.Required),
		validation.Field(&r.NResults, validation.Min(0)),
	)
}

// SimilarPatternsRequest is the request body for component-shaped similarity
// lookup.
type SimilarPatternsRequest struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	NResults    int    `json:"n_results"`
}

// Validate implements request validation.
func (r SimilarPatternsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Description, validation.Required),
		validation.Field(&r.NResults, validation.Min(0)),
	)
}

// IndexPatternsRequest is the request body for triggering a reindex.
type IndexPatternsRequest struct {
	ForceReindex bool `json:"force_reindex"`
}

// PatternResult is one ranked search hit in the API response.
type PatternResult struct {
	Name            string  `json:"name"`
	Label           string  `json:"label"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	Platform        string  `json:"platform"`
	Version         string  `json:"version"`
	SimilarityScore float64 `json:"similarity_score"`
}

// PatternSearchResponse wraps ranked search hits.
type PatternSearchResponse struct {
	Results []PatternResult `json:"results"`
}

// GenerateRequest is the request body of both generation endpoints.
type GenerateRequest struct {
	SpecYAML string `json:"spec_yaml"`
}

// Validate implements request validation.
func (r GenerateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SpecYAML, validation.Required),
	)
}
