// Package generator orchestrates component generation: spec parsing,
// optional pattern retrieval, text-generation calls, validation, and a
// bounded retry-with-feedback loop.
package generator

import (
	"context"
	"log/slog"

	"github.com/ostrander/smithy/internal/llm"
	"github.com/ostrander/smithy/internal/models"
	"github.com/ostrander/smithy/internal/parser"
	"github.com/ostrander/smithy/internal/validator"
)

// DefaultMaxRetries bounds the validate-and-fix loop.
const DefaultMaxRetries = 3

// Result is a finished generation, including the last validation report so
// callers can judge an attempt that exhausted its retries.
type Result struct {
	Name          string           `json:"name"`
	Code          string           `json:"code"`
	Documentation string           `json:"documentation"`
	Dependencies  []string         `json:"dependencies"`
	Validation    validator.Result `json:"validation"`
	Attempts      int              `json:"attempts"`
}

// Orchestrator drives generation end to end. Pattern retrieval is optional:
// a nil source, or a failing one, degrades quality but never blocks.
type Orchestrator struct {
	patterns   PatternSource
	generator  llm.TextGenerator
	validator  *validator.Validator
	maxRetries int
	logger     *slog.Logger
}

// New creates an Orchestrator. patterns may be nil; maxRetries <= 0 means
// DefaultMaxRetries.
func New(patterns PatternSource, gen llm.TextGenerator, val *validator.Validator, maxRetries int, logger *slog.Logger) *Orchestrator {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		patterns:   patterns,
		generator:  gen,
		validator:  val,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Generate turns a YAML spec into component code plus documentation.
// A malformed spec fails fast before any generation call. On validation
// failure the generation API is re-invoked with the failure details, up to
// maxRetries times; when retries exhaust, the best attempt is returned
// together with its validation errors.
func (o *Orchestrator) Generate(ctx context.Context, specYAML string) (*Result, error) {
	spec, err := parser.Parse([]byte(specYAML))
	if err != nil {
		return nil, err
	}
	return o.generate(ctx, spec)
}

// GenerateSample runs Generate over the built-in fixture spec.
func (o *Orchestrator) GenerateSample(ctx context.Context) (*Result, error) {
	return o.Generate(ctx, SampleSpecYAML)
}

func (o *Orchestrator) generate(ctx context.Context, spec *models.ComponentSpec) (*Result, error) {
	matches := o.lookupPatterns(ctx, spec)

	code, err := o.generator.Complete(ctx, buildCodePrompt(spec, matches))
	if err != nil {
		return nil, err
	}
	code = extractCode(code)
	report := o.validator.Validate(code)
	attempts := 1

	for !report.IsValid && attempts <= o.maxRetries {
		o.logger.Warn("generated code failed validation, retrying with feedback",
			slog.String("component", spec.Name),
			slog.Int("attempt", attempts),
			slog.Int("errors", len(report.Errors)))

		fixed, err := o.generator.Complete(ctx, buildFixPrompt(spec, code, report.Errors))
		if err != nil {
			// Keep the best attempt instead of failing wholesale.
			o.logger.Error("fix attempt failed", slog.String("error", err.Error()))
			break
		}
		code = extractCode(fixed)
		report = o.validator.Validate(code)
		attempts++
	}

	if !report.IsValid {
		o.logger.Warn("validation still failing after retries",
			slog.String("component", spec.Name),
			slog.Int("attempts", attempts))
	}

	docs := o.generateDocs(ctx, spec, code)

	deps := spec.Dependencies
	if deps == nil {
		deps = []string{}
	}
	return &Result{
		Name:          spec.Name,
		Code:          code,
		Documentation: docs,
		Dependencies:  deps,
		Validation:    report,
		Attempts:      attempts,
	}, nil
}

// lookupPatterns retrieves similar components; any failure degrades to an
// empty result set.
func (o *Orchestrator) lookupPatterns(ctx context.Context, spec *models.ComponentSpec) []PatternMatch {
	if o.patterns == nil {
		return nil
	}
	matches, err := o.patterns.FindSimilar(ctx, similarQuery(spec), similarCategory(spec), 3)
	if err != nil {
		o.logger.Warn("pattern lookup failed, generating without references",
			slog.String("component", spec.Name),
			slog.String("error", err.Error()))
		return nil
	}
	return matches
}

// generateDocs asks the model for usage documentation; failure degrades to
// a stub rather than failing the whole generation.
func (o *Orchestrator) generateDocs(ctx context.Context, spec *models.ComponentSpec, code string) string {
	docs, err := o.generator.Complete(ctx, buildDocsPrompt(spec, code))
	if err != nil {
		o.logger.Warn("documentation generation failed",
			slog.String("component", spec.Name),
			slog.String("error", err.Error()))
		return "# " + spec.DisplayName + "\n\n" + spec.Description + "\n"
	}
	return docs
}
