package rewrite

// Fixed editorial instruction; every rewrite request uses the same
// single-turn shape.
const (
	systemPrompt = "You are a helpful assistant that improves text for grammar, clarity, and readability."

	userPromptPrefix = "Improve the following text for grammar, clarity, and readability:\n\n"
)

// buildPrompt wraps the extracted text in the editorial instruction.
func buildPrompt(text string) string {
	return userPromptPrefix + text
}
