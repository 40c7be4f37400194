package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Models    ModelsConfig    `yaml:"models"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Session   SessionConfig   `yaml:"session"`
	Router    RouterConfig    `yaml:"router"`
	Auth      AuthConfig      `yaml:"auth"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int `yaml:"port"`
	MetricsPort int `yaml:"metrics_port"`
}

// ModelConfig describes a single model backend
type ModelConfig struct {
	Provider  string `yaml:"provider"` // openai or ollama
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// ModelsConfig holds the two model roles and inference discipline
type ModelsConfig struct {
	Chef   ModelConfig `yaml:"chef"`
	Waiter ModelConfig `yaml:"waiter"`

	// SerializeInference funnels all model calls through a single lock.
	// Set this when the backend is not safe for concurrent use.
	SerializeInference bool `yaml:"serialize_inference"`
}

// EmbeddingConfig describes the embedding backend for the vector index
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // openai or local
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// CorpusConfig describes the recipe/safety/constants database
type CorpusConfig struct {
	Driver   string `yaml:"driver"` // sqlite3 or postgres
	DSN      string `yaml:"dsn"`
	SeedFile string `yaml:"seed_file"`
}

// SessionConfig bounds the in-memory session store
type SessionConfig struct {
	Capacity int `yaml:"capacity"`
}

// RouterConfig tunes per-turn behavior
type RouterConfig struct {
	TurnTimeoutSeconds  int  `yaml:"turn_timeout_seconds"`
	ClassifyWithHistory bool `yaml:"classify_with_history"`
	RecipeResults       int  `yaml:"recipe_results"`
	SafetyResults       int  `yaml:"safety_results"`
}

// AuthConfig holds session token settings
type AuthConfig struct {
	SecretEnv       string `yaml:"secret_env"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

// Load reads and validates a YAML configuration file, applying defaults
// for unset values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MetricsPort == 0 {
		c.Server.MetricsPort = 9090
	}
	if c.Models.Chef.Provider == "" {
		c.Models.Chef.Provider = "ollama"
	}
	if c.Models.Chef.Model == "" {
		c.Models.Chef.Model = "mistral"
	}
	if c.Models.Waiter.Provider == "" {
		c.Models.Waiter.Provider = "ollama"
	}
	if c.Models.Waiter.Model == "" {
		c.Models.Waiter.Model = "phi3"
	}
	if c.Models.Chef.APIKeyEnv == "" {
		c.Models.Chef.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Models.Waiter.APIKeyEnv == "" {
		c.Models.Waiter.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "local"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.APIKeyEnv == "" {
		c.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Corpus.Driver == "" {
		c.Corpus.Driver = "sqlite3"
	}
	if c.Corpus.DSN == "" {
		c.Corpus.DSN = "chefai.db"
	}
	if c.Session.Capacity == 0 {
		c.Session.Capacity = 1024
	}
	if c.Router.TurnTimeoutSeconds == 0 {
		c.Router.TurnTimeoutSeconds = 120
	}
	if c.Router.RecipeResults == 0 {
		c.Router.RecipeResults = 3
	}
	if c.Router.SafetyResults == 0 {
		c.Router.SafetyResults = 2
	}
	if c.Auth.SecretEnv == "" {
		c.Auth.SecretEnv = "CHEFAI_JWT_SECRET"
	}
	if c.Auth.TokenTTLMinutes == 0 {
		c.Auth.TokenTTLMinutes = 24 * 60
	}
}

// TurnTimeout returns the per-turn deadline as a duration.
func (c *Config) TurnTimeout() time.Duration {
	return time.Duration(c.Router.TurnTimeoutSeconds) * time.Second
}

// APIKey resolves a model's API key from the environment.
func (m ModelConfig) APIKey() string {
	return os.Getenv(m.APIKeyEnv)
}

// APIKey resolves the embedding API key from the environment.
func (e EmbeddingConfig) APIKey() string {
	return os.Getenv(e.APIKeyEnv)
}

// Secret resolves the JWT signing secret from the environment.
func (a AuthConfig) Secret() string {
	return os.Getenv(a.SecretEnv)
}
