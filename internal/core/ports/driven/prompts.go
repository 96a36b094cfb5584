package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations return the embedded default
	// or an error when no default exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswerSystem is the system instruction that lists the grounding rules.
	// This prompt has no format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser wraps the assembled context and the question.
	// The template expects two %s placeholders: context, then question.
	PromptAnswerUser = "answer_user"
)

// DefaultPrompts returns the built-in prompt templates keyed by prompt name.
// Prompt stores seed user-editable files from these and services fall back to them
// when no store is configured.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptAnswerSystem: `You are a helpful assistant that answers questions about JFK files. Use the provided context to answer the user's question.
Guidelines:
1. Only use information from the provided context
2. If the context doesn't contain enough information to fully answer the question, say so
3. Always cite your sources using the file titles and similarity scores provided
4. If you find conflicting information in different sources, mention this
5. Be precise and factual in your responses
6. If you're not certain about something, express that uncertainty`,

		PromptAnswerUser: "Context:\n%s\n\nQuestion: %s",
	}
}
