package lorem

import (
	"context"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	"redraft/internal/domain/services/rewrite"
)

// Provider is a mock rewrite provider that generates lorem ipsum text.
// Used for testing and development without requiring real API keys.
type Provider struct {
	generator *loremgen.Lorem
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider() *Provider {
	return &Provider{
		generator: loremgen.New(),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// SupportsModel returns true if the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-slow"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// Rewrite generates a lorem ipsum "rewrite" after a short delay that
// simulates a blocking API call. lorem-slow stretches the delay enough to
// exercise timeout and stale-result paths.
func (p *Provider) Rewrite(ctx context.Context, req *rewrite.Request) (*rewrite.Result, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by lorem provider", req.Model)
	}

	select {
	case <-time.After(p.delay(req.Model)):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	text := p.generateTextWords(req.MaxTokens)

	return &rewrite.Result{
		Text:         text,
		Model:        req.Model,
		Provider:     p.Name(),
		InputTokens:  len(strings.Fields(req.Prompt)),
		OutputTokens: len(strings.Fields(text)),
	}, nil
}

// delay returns the simulated processing time based on the model name.
func (p *Provider) delay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 5 * time.Second
	}
	return 100 * time.Millisecond
}

// generateTextWords generates lorem ipsum text with approximately
// targetWords words.
func (p *Provider) generateTextWords(targetWords int) string {
	if targetWords <= 0 {
		targetWords = 100
	}

	var sb strings.Builder
	wordCount := 0

	for wordCount < targetWords {
		sentence := p.generator.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")

		wordCount += len(strings.Fields(sentence))

		// Paragraph break every ~50 words.
		if wordCount%50 == 0 {
			sb.WriteString("\n\n")
		}
	}

	return strings.TrimSpace(sb.String())
}
