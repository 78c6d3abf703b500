package driven

import "context"

// LLMService is a chat model used to relabel weak heuristic labels. It is
// optional: when nil, documents keep their heuristic labels.
type LLMService interface {
	// Chat sends the conversation and returns the model's reply text.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName identifies the model in logs and reports.
	ModelName() string

	// Ping checks credentials and reachability without running inference.
	Ping(ctx context.Context) error

	Close() error
}

// ChatMessage is one turn of a conversation. Role is "system", "user"
// or "assistant".
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes a single call.
type ChatOptions struct {
	// MaxTokens caps the reply; zero leaves it to the provider.
	MaxTokens int

	// Temperature is sent as given, so zero means deterministic.
	Temperature float64

	// JSONMode asks the provider to return a single JSON object.
	JSONMode bool
}
