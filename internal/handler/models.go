package handler

import (
	"log/slog"
	"net/http"

	"redraft/internal/config"
	"redraft/internal/httputil"
	"redraft/internal/service/rewrite/capabilities"
)

// ModelsHandler handles HTTP requests for model capabilities.
type ModelsHandler struct {
	config   *config.Config
	logger   *slog.Logger
	registry *capabilities.Registry
}

// NewModelsHandler creates a new models handler.
func NewModelsHandler(cfg *config.Config, logger *slog.Logger, registry *capabilities.Registry) *ModelsHandler {
	return &ModelsHandler{
		config:   cfg,
		logger:   logger,
		registry: registry,
	}
}

// ProviderResponse represents a provider with its models.
type ProviderResponse struct {
	ID     string                           `json:"id"`
	Models []capabilities.ModelCapabilities `json:"models"`
}

// GetCapabilities returns the models available for rewriting. Providers
// without credentials are omitted; the lorem provider needs none.
// GET /api/models
func (h *ModelsHandler) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	providers := []ProviderResponse{}

	for _, name := range h.registry.Providers() {
		if name == "anthropic" && h.config.AnthropicAPIKey == "" {
			continue
		}
		models, err := h.registry.ListProviderModels(name)
		if err != nil {
			continue
		}
		providers = append(providers, ProviderResponse{ID: name, Models: models})
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"default_model": h.config.DefaultModel,
		"providers":     providers,
	})
}
