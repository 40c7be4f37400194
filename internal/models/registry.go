package models

import (
	"fmt"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"chefai/internal/config"
)

// Model role identifiers. The chef is the fine-tuned specialist generator,
// the waiter is the general-purpose conversational model.
const (
	RoleChef   = "chef"
	RoleWaiter = "waiter"
)

// Registry manages the LLM instances behind the two model roles.
type Registry struct {
	providers map[string]config.ModelConfig
	instances map[string]llms.Model
	mu        sync.RWMutex
}

// NewRegistry creates a registry for the configured chef and waiter models.
func NewRegistry(cfg config.ModelsConfig) *Registry {
	return &Registry{
		providers: map[string]config.ModelConfig{
			RoleChef:   cfg.Chef,
			RoleWaiter: cfg.Waiter,
		},
		instances: make(map[string]llms.Model),
	}
}

// GetModel returns an initialized LLM instance for a role, creating and
// caching it on first use.
func (r *Registry) GetModel(role string) (llms.Model, error) {
	r.mu.RLock()
	model, exists := r.instances[role]
	r.mu.RUnlock()
	if exists {
		return model, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if model, exists := r.instances[role]; exists {
		return model, nil
	}

	provider, exists := r.providers[role]
	if !exists {
		return nil, fmt.Errorf("unknown model role: %s", role)
	}

	model, err := initializeModel(provider)
	if err != nil {
		return nil, err
	}

	r.instances[role] = model
	return model, nil
}

// initializeModel creates a new LLM instance based on provider type
func initializeModel(provider config.ModelConfig) (llms.Model, error) {
	switch provider.Provider {
	case "openai":
		return initializeOpenAI(provider)
	case "ollama":
		return initializeOllama(provider)
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", provider.Provider)
	}
}

func initializeOpenAI(provider config.ModelConfig) (llms.Model, error) {
	apiKey := provider.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable not set", provider.APIKeyEnv)
	}

	opts := []openai.Option{
		openai.WithModel(provider.Model),
		openai.WithToken(apiKey),
	}
	if provider.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(provider.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI model: %w", err)
	}
	return llm, nil
}

func initializeOllama(provider config.ModelConfig) (llms.Model, error) {
	opts := []ollama.Option{
		ollama.WithModel(provider.Model),
	}
	if provider.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(provider.BaseURL))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Ollama model: %w", err)
	}
	return llm, nil
}
