package generator

import (
	"context"
	"strings"

	"github.com/ostrander/smithy/internal/models"
	"github.com/ostrander/smithy/internal/parser"
)

// Confidence labels.
const (
	ConfidenceHigh    = "high"
	ConfidenceMedium  = "medium"
	ConfidenceLow     = "low"
	ConfidenceBlocked = "blocked"
)

// Complexity labels.
const (
	ComplexitySimple  = "simple"
	ComplexityMedium  = "medium"
	ComplexityComplex = "complex"
)

// Assessment is the dry-run feasibility verdict for a spec.
type Assessment struct {
	Feasible    bool     `json:"feasible"`
	Confidence  string   `json:"confidence"`
	Complexity  string   `json:"complexity"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
	MissingInfo []string `json:"missing_info"`
	Platform    string   `json:"platform"`
}

// Assess estimates whether a spec can likely be generated, without calling
// the generation API. It reuses the same parsing and pattern lookup as
// Generate plus static keyword checks.
func (o *Orchestrator) Assess(ctx context.Context, specYAML string) (*Assessment, error) {
	spec, err := parser.Parse([]byte(specYAML))
	if err != nil {
		return nil, err
	}

	a := &Assessment{
		Feasible:    true,
		Confidence:  ConfidenceMedium,
		Complexity:  ComplexityMedium,
		Issues:      []string{},
		Suggestions: []string{},
		MissingInfo: []string{},
		Platform:    models.DefaultPlatform,
	}

	assessComplexity(spec, a)
	assessPatternSupport(o.lookupPatterns(ctx, spec), a)
	assessUnsupportedFeatures(spec, a)
	determineFeasibility(a)
	return a, nil
}

// assessComplexity scores requirements, dependencies, and inputs.
func assessComplexity(spec *models.ComponentSpec, a *Assessment) {
	score := len(spec.Requirements) + 2*len(spec.Dependencies) + len(spec.Inputs)
	switch {
	case score <= 5:
		a.Complexity = ComplexitySimple
		a.Confidence = ConfidenceHigh
	case score <= 15:
		a.Complexity = ComplexityMedium
		a.Confidence = ConfidenceMedium
	default:
		a.Complexity = ComplexityComplex
		a.Confidence = ConfidenceLow
		a.Issues = append(a.Issues, "high complexity component may require manual review")
	}
	if len(spec.Inputs) == 0 {
		a.MissingInfo = append(a.MissingInfo, "no input descriptors provided; the generated configuration UI will be empty")
	}
}

// assessPatternSupport adjusts confidence by how many similar reference
// components exist.
func assessPatternSupport(matches []PatternMatch, a *Assessment) {
	switch {
	case len(matches) >= 2:
		a.Confidence = ConfidenceHigh
		a.Suggestions = append(a.Suggestions, "good pattern matches found in the knowledge base")
	case len(matches) == 1:
		a.Confidence = ConfidenceMedium
		a.Suggestions = append(a.Suggestions, "limited pattern matches; may need additional validation")
	default:
		a.Confidence = ConfidenceLow
		a.Issues = append(a.Issues, "no similar components found for pattern matching")
	}
}

// assessUnsupportedFeatures flags requirements the target runtime handles
// poorly.
func assessUnsupportedFeatures(spec *models.ComponentSpec, a *Assessment) {
	for _, req := range spec.Requirements {
		lower := strings.ToLower(req)
		switch {
		case strings.Contains(lower, "real-time") || strings.Contains(lower, "streaming"):
			a.Issues = append(a.Issues, "real-time/streaming features may be limited on the target platform")
		case strings.Contains(lower, "database") && strings.Contains(lower, "connection"):
			a.Issues = append(a.Issues, "database connections require careful configuration on the target platform")
		case strings.Contains(lower, "file system") || strings.Contains(lower, "file write"):
			a.Issues = append(a.Issues, "file system operations may have security restrictions")
		case strings.Contains(lower, "browser") || strings.Contains(lower, "dom"):
			a.Issues = append(a.Issues, "browser/DOM manipulation is not available in the backend runtime")
		}
	}
}

// determineFeasibility makes the final call from accumulated signals.
func determineFeasibility(a *Assessment) {
	switch {
	case a.Confidence == ConfidenceBlocked:
		a.Feasible = false
	case len(a.Issues) > 3:
		a.Feasible = false
		a.Confidence = ConfidenceBlocked
	case a.Complexity == ComplexityComplex && a.Confidence == ConfidenceLow:
		a.Feasible = false
	default:
		a.Feasible = true
	}
}
