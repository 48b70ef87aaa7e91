// Package parser parses and validates YAML component specifications.
package parser

import (
	"bytes"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/ostrander/smithy/internal/apperr"
	"github.com/ostrander/smithy/internal/models"
)

// Parse decodes a YAML component specification and validates its required
// fields. Unknown keys are rejected so a mistyped field name fails loudly
// instead of silently producing an empty spec.
func Parse(data []byte) (*models.ComponentSpec, error) {
	var spec models.ComponentSpec

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("%w: invalid YAML: %v", apperr.ErrInvalid, err)
	}

	if err := Validate(&spec); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}

	if spec.Version == "" {
		spec.Version = "1.0.0"
	}
	return &spec, nil
}

// Validate checks the required component-spec fields.
func Validate(spec *models.ComponentSpec) error {
	return validation.ValidateStruct(spec,
		validation.Field(&spec.Name, validation.Required),
		validation.Field(&spec.DisplayName, validation.Required),
		validation.Field(&spec.Description, validation.Required),
		validation.Field(&spec.Category, validation.Required),
		validation.Field(&spec.Platforms, validation.Required, validation.Length(1, 0)),
		validation.Field(&spec.Requirements, validation.Required, validation.Length(1, 0)),
	)
}
