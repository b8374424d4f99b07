// Package ai provides the generative-AI provider the tool panels proxy
// through. The tools are stateless: one prompt in, raw text out.
package ai

import (
	"context"
)

// Provider is the interface for generative-AI providers
type Provider interface {
	// Complete sends a single prompt (with an optional system instruction)
	// and returns the raw text response.
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// ProviderFactory creates a provider from a configuration map
type ProviderFactory func(config map[string]string) (Provider, error)

// ProviderRegistry stores available AI providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Provider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return factory(config)
}

// RegisterOpenAI registers the OpenAI provider factory
func RegisterOpenAI(registry *ProviderRegistry) {
	registry.Register("openai", func(config map[string]string) (Provider, error) {
		apiKey := config["api_key"]
		if apiKey == "" {
			return nil, &ErrMissingAPIKey{}
		}
		return NewOpenAIProvider(apiKey, config["base_url"], config["model"], nil, false), nil
	})
}
