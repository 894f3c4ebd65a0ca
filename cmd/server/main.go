package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"redraft/internal/config"
	"redraft/internal/extract"
	"redraft/internal/handler"
	"redraft/internal/middleware"
	"redraft/internal/service/rewrite"
	"redraft/internal/service/rewrite/capabilities"
	"redraft/internal/store"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"default_model", cfg.DefaultModel,
	)

	// Setup rewrite providers
	providerRegistry, err := rewrite.SetupProviders(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup rewrite providers: %v", err)
	}

	// Initialize capability registry
	capabilityRegistry, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize capability registry: %v", err)
	}
	logger.Info("capability registry initialized")

	// Session store with idle eviction
	sessions := store.New(cfg.SessionTTL, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessions.Run(ctx)

	// Services
	extractor := extract.New(cfg.MaxUploadBytes, logger)
	rewriteService := rewrite.NewService(providerRegistry, capabilityRegistry, cfg, logger)

	// Handlers
	sessionHandler := handler.NewSessionHandler(sessions, extractor, rewriteService, cfg.MaxUploadBytes, logger)
	modelsHandler := handler.NewModelsHandler(cfg, logger, capabilityRegistry)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Session routes
	mux.HandleFunc("POST /api/sessions", sessionHandler.Create)
	mux.HandleFunc("GET /api/sessions/{id}", sessionHandler.Get)
	mux.HandleFunc("DELETE /api/sessions/{id}", sessionHandler.Delete)
	mux.HandleFunc("POST /api/sessions/{id}/document", sessionHandler.Replace)
	mux.HandleFunc("POST /api/sessions/{id}/rewrite", sessionHandler.Rewrite)
	mux.HandleFunc("GET /api/sessions/{id}/diff", sessionHandler.Diff)
	mux.HandleFunc("POST /api/sessions/{id}/reject", sessionHandler.Reject)
	mux.HandleFunc("POST /api/sessions/{id}/export", sessionHandler.Export)

	// Model capabilities routes
	mux.HandleFunc("GET /api/models", modelsHandler.GetCapabilities)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → RequestLogger → Routes
	h = middleware.RequestLogger(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
