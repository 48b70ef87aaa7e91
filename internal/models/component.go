// Package models defines the domain types shared by both services.
package models

import "time"

// Component statuses.
const (
	StatusGenerated = "generated"
)

// Deployment statuses. Transitions between them are deliberately
// unconstrained: any value may follow any other.
const (
	DeploymentPending  = "pending"
	DeploymentDeployed = "deployed"
	DeploymentFailed   = "failed"
)

// DeploymentStatuses lists the accepted deployment_status values.
var DeploymentStatuses = []string{DeploymentPending, DeploymentDeployed, DeploymentFailed}

// DefaultPlatform is assumed when a registration omits the platform.
const DefaultPlatform = "flowise"

// FieldSpec describes one input or output of a component spec.
type FieldSpec struct {
	Name     string `yaml:"name" json:"name"`
	Label    string `yaml:"label,omitempty" json:"label,omitempty"`
	Type     string `yaml:"type,omitempty" json:"type,omitempty"`
	Required bool   `yaml:"required,omitempty" json:"required,omitempty"`
}

// ComponentSpec is the parsed YAML specification of a component to generate.
type ComponentSpec struct {
	Name         string      `yaml:"name" json:"name"`
	DisplayName  string      `yaml:"display_name" json:"display_name"`
	Description  string      `yaml:"description" json:"description"`
	Category     string      `yaml:"category" json:"category"`
	Platforms    []string    `yaml:"platforms" json:"platforms"`
	Requirements []string    `yaml:"requirements" json:"requirements"`
	Dependencies []string    `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Inputs       []FieldSpec `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Outputs      []FieldSpec `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	Author       string      `yaml:"author,omitempty" json:"author,omitempty"`
	Version      string      `yaml:"version,omitempty" json:"version,omitempty"`
	Icon         string      `yaml:"icon,omitempty" json:"icon,omitempty"`
}

// ComponentRecord is the registry's metadata record for a generated component.
// Identity is ComponentID; multiple records may share a Name.
type ComponentRecord struct {
	ComponentID      string    `json:"component_id"`
	Name             string    `json:"name"`
	DisplayName      string    `json:"display_name"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	Platform         string    `json:"platform"`
	Version          string    `json:"version"`
	Author           string    `json:"author"`
	Status           string    `json:"status"`
	CodeSize         int       `json:"code_size"`
	Dependencies     []string  `json:"dependencies"`
	ValidationPassed bool      `json:"validation_passed"`
	DeploymentStatus *string   `json:"deployment_status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PatternDocument is a reference snippet held in the pattern engine.
// Documents are immutable once indexed and replaced wholesale on reindex.
type PatternDocument struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Platform    string    `json:"platform"`
	Version     string    `json:"version"`
	Source      string    `json:"-"`
	SourceHash  string    `json:"-"`
	Embedding   []float32 `json:"-"`
	Position    int       `json:"-"`
}

// RegistryStats aggregates the registry contents.
type RegistryStats struct {
	TotalComponents int            `json:"total_components"`
	ByPlatform      map[string]int `json:"by_platform"`
	ByCategory      map[string]int `json:"by_category"`
	ByStatus        map[string]int `json:"by_status"`
	TotalCodeSize   int            `json:"total_code_size"`
}

// PatternStats aggregates the pattern engine contents.
type PatternStats struct {
	TotalDocuments   int    `json:"total_documents"`
	EmbeddingPresent bool   `json:"embedding_present"`
	Platform         string `json:"platform"`
}
