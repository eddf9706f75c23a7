// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package oracle gives the pipeline one text-in/text-out view of the
// language-model providers. A model name is mapped to its provider through
// an explicit registry; each provider has its own backend.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/refcheck/pkg/types"
)

// Oracle completes a prompt. Errors mean "no usable answer"; callers
// degrade rather than abort.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrUnsupportedModel is returned for a model name not in the registry.
	ErrUnsupportedModel = errors.New("unsupported model")

	// ErrNotConfigured is returned when the model's provider has no API key.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrEmptyResponse is returned when a provider answers with no text.
	ErrEmptyResponse = errors.New("empty response")
)

// DefaultModels is the built-in model table.
var DefaultModels = []types.ModelConfig{
	{Name: "gemini-1.5-pro", Provider: types.ProviderGemini},
	{Name: "gemini-1.5-flash", Provider: types.ProviderGemini},
	{Name: "gemini-2.5-flash", Provider: types.ProviderGemini},
	{Name: "deepseek-chat", Provider: types.ProviderDeepSeek},
	{Name: "deepseek-reasoner", Provider: types.ProviderDeepSeek},
	{Name: "claude-sonnet-4-5-20250929", Provider: types.ProviderClaude},
}

// Registry maps model names to providers.
type Registry struct {
	models []types.ModelConfig
	byName map[string]types.OracleProvider
}

// NewRegistry builds a registry from models, or from DefaultModels when
// models is empty. Later duplicates override earlier entries.
func NewRegistry(models []types.ModelConfig) *Registry {
	if len(models) == 0 {
		models = DefaultModels
	}
	r := &Registry{byName: make(map[string]types.OracleProvider, len(models))}
	for _, m := range models {
		if _, seen := r.byName[m.Name]; !seen {
			r.models = append(r.models, m)
		}
		r.byName[m.Name] = m.Provider
	}
	for i, m := range r.models {
		r.models[i].Provider = r.byName[m.Name]
	}
	return r
}

// Provider returns the provider serving model.
func (r *Registry) Provider(model string) (types.OracleProvider, error) {
	p, ok := r.byName[model]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedModel, model)
	}
	return p, nil
}

// Models returns the registered models in declaration order.
func (r *Registry) Models() []types.ModelConfig {
	out := make([]types.ModelConfig, len(r.models))
	copy(out, r.models)
	return out
}

// New returns the Oracle for model. It fails with ErrUnsupportedModel for
// unknown names and ErrNotConfigured when the provider's key is missing.
func (r *Registry) New(model string, cfg types.OracleConfig) (Oracle, error) {
	provider, err := r.Provider(model)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: cfg.Timeout}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	switch provider {
	case types.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrNotConfigured)
		}
		return &GeminiBackend{APIKey: cfg.GeminiAPIKey, Model: model, Client: client}, nil
	case types.ProviderDeepSeek:
		if cfg.DeepSeekAPIKey == "" {
			return nil, fmt.Errorf("%w: DEEPSEEK_API_KEY is not set", ErrNotConfigured)
		}
		return &DeepSeekBackend{APIKey: cfg.DeepSeekAPIKey, Model: model, MaxTokens: maxTokens, Client: client}, nil
	case types.ProviderClaude:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", ErrNotConfigured)
		}
		return &ClaudeBackend{APIKey: cfg.AnthropicAPIKey, Model: model, MaxTokens: maxTokens, Client: client}, nil
	default:
		return nil, fmt.Errorf("%w: %s (provider %q)", ErrUnsupportedModel, model, provider)
	}
}

// Func adapts a plain function to Oracle.
type Func func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
