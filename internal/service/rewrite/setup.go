package rewrite

import (
	"fmt"
	"log/slog"

	"redraft/internal/config"
	"redraft/internal/service/rewrite/providers/anthropic"
	"redraft/internal/service/rewrite/providers/lorem"
)

// SetupProviders builds the provider registry from config. The lorem
// provider is always registered so dev and test environments work without
// API keys; Anthropic is added when a key is present.
func SetupProviders(cfg *config.Config, logger *slog.Logger) (*Registry, error) {
	registry := NewRegistry()

	registry.Register(lorem.NewProvider())
	logger.Info("provider available", "name", "lorem", "models", "lorem-*")

	if cfg.AnthropicAPIKey != "" {
		provider, err := anthropic.NewProvider(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic provider: %w", err)
		}
		registry.Register(provider)
		logger.Info("provider available", "name", "anthropic", "models", "claude-*")
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set - Anthropic provider not available")
	}

	p, err := registry.ForModel(cfg.DefaultModel)
	if err != nil {
		return nil, fmt.Errorf("default model %q is not served by any configured provider", cfg.DefaultModel)
	}
	if cfg.DefaultProvider != "" && p.Name() != cfg.DefaultProvider {
		return nil, fmt.Errorf("default model %q is served by %q, not the configured default provider %q",
			cfg.DefaultModel, p.Name(), cfg.DefaultProvider)
	}

	return registry, nil
}
