package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptClassifySystem is the system prompt for assisted classification.
	// It may use the {{fields}} placeholder for the enumerated field list.
	PromptClassifySystem = "classify_system"

	// PromptClassifyUser carries the document. Placeholders: {{filename}},
	// {{excerpt}} and {{candidates}}.
	PromptClassifyUser = "classify_user"
)
