package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/ledgermap/ledgermap-engine/pkg/llm"
)

// Config holds all configuration for ledgermap-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Target database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Source document store configuration (MongoDB)
	Source SourceConfig `yaml:"source"`

	// Completion model configuration
	AI AIConfig `yaml:"ai"`

	// Pipeline tunables
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// DatabaseConfig holds PostgreSQL target database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"ledgermap"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"ledgermap_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// SourceConfig holds the MongoDB source document store configuration.
type SourceConfig struct {
	URI      string `yaml:"-" env:"MONGODB_URI" env-default:"mongodb://localhost:27017"` // May embed credentials
	Database string `yaml:"database" env:"MONGODB_DATABASE" env-default:"ledgermap_raw"`
}

// AIConfig holds the completion model rotation.
type AIConfig struct {
	// ModelsStr is a comma-separated list of provider:model pairs, tried in
	// order. Format: "openai:gpt-4o-mini,anthropic:claude-3-5-haiku-latest".
	// Empty means rule-only classification.
	ModelsStr string `yaml:"models" env:"AI_MODELS" env-default:""`

	// Endpoint overrides the OpenAI-compatible base URL (self-hosted models).
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:""`

	OpenAIAPIKey    string `yaml:"-" env:"OPENAI_API_KEY"`    // Secret - not in YAML
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML

	MaxAttempts int     `yaml:"max_attempts" env:"AI_MAX_ATTEMPTS" env-default:"3"`
	BackoffMS   int     `yaml:"backoff_ms" env:"AI_BACKOFF_MS" env-default:"1000"`
	Temperature float64 `yaml:"temperature" env:"AI_TEMPERATURE" env-default:"0.1"`

	// Models is parsed from ModelsStr (not from config file).
	Models []llm.ModelConfig `yaml:"-"`
}

// Backoff returns the configured retry backoff as a duration.
func (a *AIConfig) Backoff() time.Duration {
	return time.Duration(a.BackoffMS) * time.Millisecond
}

// PipelineConfig holds run-level pipeline tunables.
type PipelineConfig struct {
	// SampleSize is how many documents are profiled per collection.
	SampleSize int `yaml:"sample_size" env:"PIPELINE_SAMPLE_SIZE" env-default:"5"`
	// BatchSize bounds how many rows one insert carries.
	BatchSize int `yaml:"batch_size" env:"PIPELINE_BATCH_SIZE" env-default:"50"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on the
// returned Config. Secrets (PGPASSWORD, MONGODB_URI, OPENAI_API_KEY,
// ANTHROPIC_API_KEY) must come from environment variables (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.parseComplexFields(); err != nil {
		return nil, fmt.Errorf("failed to parse config fields: %w", err)
	}

	return cfg, nil
}

// parseComplexFields handles fields that need post-processing after loading.
func (c *Config) parseComplexFields() error {
	models, err := c.AI.parseModels()
	if err != nil {
		return err
	}
	c.AI.Models = models
	return nil
}

// parseModels expands ModelsStr into concrete model configs, attaching the
// provider-appropriate API key and endpoint override.
func (a *AIConfig) parseModels() ([]llm.ModelConfig, error) {
	if strings.TrimSpace(a.ModelsStr) == "" {
		return nil, nil
	}

	var models []llm.ModelConfig
	for _, entry := range strings.Split(a.ModelsStr, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		providerStr, model, found := strings.Cut(entry, ":")
		if !found || model == "" {
			return nil, fmt.Errorf("invalid model entry %q, expected provider:model", entry)
		}

		mc := llm.ModelConfig{Model: strings.TrimSpace(model)}
		switch llm.Provider(strings.TrimSpace(providerStr)) {
		case llm.ProviderOpenAI:
			mc.Provider = llm.ProviderOpenAI
			mc.APIKey = a.OpenAIAPIKey
			mc.Endpoint = a.Endpoint
		case llm.ProviderAnthropic:
			mc.Provider = llm.ProviderAnthropic
			mc.APIKey = a.AnthropicAPIKey
		default:
			return nil, fmt.Errorf("unknown model provider %q", providerStr)
		}
		models = append(models, mc)
	}
	return models, nil
}
