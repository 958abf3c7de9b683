package driven

// PromptStore provides access to LLM prompt templates.
// Templates are versioned assets: editing one never changes code behaviour.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Falls back to the built-in default when no user file exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnswer grounds an answer in retrieved context.
	// The template binds exactly the {context} and {question} placeholders.
	PromptAnswer = "answer"
)
