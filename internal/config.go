package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration shared by both services.
// Each binary reads the sections it needs and ignores the rest.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Auth      AuthConfig        `yaml:"auth"`
	Registry  RegistryConfig    `yaml:"registry"`
	Patterns  PatternsConfig    `yaml:"patterns"`
	Embedding EmbeddingConfig   `yaml:"embedding"`
	LLM       LLMConfig         `yaml:"llm"`
	Generator GeneratorConfig   `yaml:"generator"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ValidateIndex additionally checks the sections the index service requires.
func (c *Config) ValidateIndex() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.Registry.Validate(); err != nil {
		return err
	}
	return c.Patterns.Validate()
}

// ValidateGenerator additionally checks the sections the generator service
// requires.
func (c *Config) ValidateGenerator() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.LLM.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled".
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// RegistryConfig holds the path to the registry JSON file.
type RegistryConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the registry configuration.
func (c *RegistryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// PatternsConfig holds the pattern corpus and index locations.
type PatternsConfig struct {
	CorpusDir string `yaml:"corpus_dir"`
	DBPath    string `yaml:"db_path"`
	Watch     bool   `yaml:"watch"`
}

// Validate validates the patterns configuration.
func (c *PatternsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CorpusDir, validation.Required),
		validation.Field(&c.DBPath, validation.Required),
	)
}

// EmbeddingConfig holds the embedding backend configuration. APIKey is
// typically injected via ${OPENAI_API_KEY} expansion.
type EmbeddingConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
}

// LLMConfig holds the code generation backend configuration.
type LLMConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
}

// Validate validates the generation backend configuration.
func (c *LLMConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIKey, validation.Required),
	)
}

// GeneratorConfig holds orchestration settings for the generator service.
type GeneratorConfig struct {
	PatternsURL string `yaml:"patterns_url"`
	MaxRetries  int    `yaml:"max_retries"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8086,
			},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Registry: RegistryConfig{
			Path: "./data/registry.json",
		},
		Patterns: PatternsConfig{
			CorpusDir: "./patterns",
			DBPath:    "./data/patterns.db",
			Watch:     true,
		},
		Embedding: EmbeddingConfig{
			Model: "text-embedding-3-small",
		},
		LLM: LLMConfig{
			Model:     "gpt-4o",
			MaxTokens: 8192,
		},
		Generator: GeneratorConfig{
			PatternsURL: "http://localhost:8086",
			MaxRetries:  3,
		},
	}
}
