package rewrite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"redraft/internal/config"
	"redraft/internal/domain"
	domainrewrite "redraft/internal/domain/services/rewrite"
	"redraft/internal/service/rewrite/capabilities"
)

// Service runs single-turn editorial rewrites against whichever provider
// serves the configured model.
type Service struct {
	registry *Registry
	caps     *capabilities.Registry
	cfg      *config.Config
	logger   *slog.Logger
}

// NewService creates a rewrite service backed by the given provider registry.
func NewService(registry *Registry, caps *capabilities.Registry, cfg *config.Config, logger *slog.Logger) *Service {
	return &Service{
		registry: registry,
		caps:     caps,
		cfg:      cfg,
		logger:   logger,
	}
}

// Rewrite sends the extracted text through the configured model and returns
// the improved version. The call is bounded by the configured timeout.
func (s *Service) Rewrite(ctx context.Context, text string) (*domainrewrite.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &domain.EmptyContentError{Message: "no valid content to analyze"}
	}

	model := s.cfg.DefaultModel
	provider, err := s.registry.ForModel(model)
	if err != nil {
		return nil, &domain.RewriteError{
			Message: fmt.Sprintf("no provider available for model %s", model),
			Cause:   err,
		}
	}

	maxTokens := s.cfg.RewriteMaxTokens
	if caps, err := s.caps.GetModelCapabilities(model); err == nil {
		if caps.MaxOutput > 0 && maxTokens > caps.MaxOutput {
			maxTokens = caps.MaxOutput
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RewriteTimeout)
	defer cancel()

	s.logger.Debug("rewrite request",
		"provider", provider.Name(),
		"model", model,
		"max_tokens", maxTokens,
		"input_chars", len(text))

	result, err := provider.Rewrite(ctx, &domainrewrite.Request{
		Model:       model,
		System:      systemPrompt,
		Prompt:      buildPrompt(text),
		MaxTokens:   maxTokens,
		Temperature: config.RewriteTemperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &domain.RewriteError{
				Message: fmt.Sprintf("rewrite timed out after %s", s.cfg.RewriteTimeout),
				Cause:   err,
			}
		}
		return nil, &domain.RewriteError{
			Message: "rewrite service call failed",
			Cause:   err,
		}
	}

	if strings.TrimSpace(result.Text) == "" {
		return nil, &domain.RewriteError{Message: "rewrite service returned no text"}
	}

	s.logger.Debug("rewrite complete",
		"provider", result.Provider,
		"model", result.Model,
		"input_tokens", result.InputTokens,
		"output_tokens", result.OutputTokens)

	return result, nil
}
