// Package ai builds the language model client selected in the [llm]
// settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/doclabel/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/doclabel/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/doclabel/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
	"github.com/custodia-labs/doclabel/internal/logger"
)

// pingTimeout bounds the reachability check in Connect.
const pingTimeout = 5 * time.Second

type constructor func(s domain.LLMSettings) (driven.LLMService, error)

var constructors = map[domain.AIProvider]constructor{
	domain.AIProviderOllama: func(s domain.LLMSettings) (driven.LLMService, error) {
		return ollama.NewLLMService(ollama.LLMConfig{BaseURL: s.BaseURL, Model: s.Model}), nil
	},
	domain.AIProviderOpenAI: func(s domain.LLMSettings) (driven.LLMService, error) {
		return openai.NewLLMService(openai.LLMConfig{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
	domain.AIProviderAnthropic: func(s domain.LLMSettings) (driven.LLMService, error) {
		return anthropic.NewLLMService(anthropic.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
}

// New builds the client for settings without contacting it. It returns
// nil when assisted classification is off or lacks a credential; the
// classifier then runs as a no-op.
func New(settings domain.LLMSettings) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}
	build, ok := constructors[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if settings.Model == "" {
		settings.Model = domain.DefaultLLMModels()[settings.Provider]
	}
	return build(settings)
}

// Connect builds the client and pings it. Any failure is reported as
// domain.ErrLLMUnavailable.
func Connect(ctx context.Context, settings domain.LLMSettings) (driven.LLMService, error) {
	svc, err := New(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Check the [llm] section of doclabel.toml", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable (%w)", domain.ErrLLMUnavailable, settings.Provider, err)
	}

	logger.Debug("Using %s model %s", settings.Provider, svc.ModelName())
	return svc, nil
}
