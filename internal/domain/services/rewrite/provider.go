package rewrite

import "context"

// Request is a single-turn rewrite instruction for a provider.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Result is the provider's completed rewrite.
type Result struct {
	Text         string
	Model        string
	Provider     string
	InputTokens  int
	OutputTokens int
}

// Provider is one rewrite backend. Implementations must honour ctx
// cancellation and return errors rather than retrying.
type Provider interface {
	// Name returns the provider name for logging and routing.
	Name() string

	// SupportsModel returns true if this provider serves the given model.
	SupportsModel(model string) bool

	// Rewrite performs the single-turn completion.
	Rewrite(ctx context.Context, req *Request) (*Result, error)
}
