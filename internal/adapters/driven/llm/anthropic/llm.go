// Package anthropic implements the language model port on the Anthropic
// messages API.
package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/doclabel/internal/adapters/driven/llm/llmhttp"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultMaxTokens = 1024

	anthropicVersion = "2023-06-01"

	// jsonPrefill opens the assistant turn so the reply continues a JSON object.
	jsonPrefill = "{"
)

// Config configures the Anthropic client.
type Config struct {
	// APIKey is required.
	APIKey string

	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService classifies through the Anthropic messages API.
type LLMService struct {
	api   *llmhttp.Client
	model string
}

type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
}

type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// NewLLMService creates an Anthropic client.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &LLMService{
		api: llmhttp.New(llmhttp.Config{
			Provider: "anthropic",
			BaseURL:  cfg.BaseURL,
			Header: http.Header{
				"X-Api-Key":         {cfg.APIKey},
				"Anthropic-Version": {anthropicVersion},
			},
			Timeout: cfg.Timeout,
		}),
		model: cfg.Model,
	}, nil
}

// Chat sends one messages request. System messages move to the system
// field. In JSON mode the assistant turn is prefilled with an opening
// brace, which is put back in front of the reply.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var system []string
	turns := make([]messagesMessage, 0, len(messages)+1)
	for _, m := range messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, messagesMessage{Role: m.Role, Content: m.Content})
	}
	if opts.JSONMode {
		turns = append(turns, messagesMessage{Role: "assistant", Content: jsonPrefill})
	}

	// max_tokens is mandatory here.
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temperature := opts.Temperature

	var resp messagesResponse
	err := s.api.PostJSON(ctx, "/v1/messages", messagesRequest{
		Model:       s.model,
		Messages:    turns,
		MaxTokens:   maxTokens,
		System:      strings.Join(system, "\n\n"),
		Temperature: &temperature,
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", errors.New("anthropic: no response content returned")
	}

	var out strings.Builder
	if opts.JSONMode {
		out.WriteString(jsonPrefill)
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/v1/models")
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
