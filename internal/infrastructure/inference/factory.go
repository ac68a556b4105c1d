package inference

import (
	"context"
	"fmt"

	"readvault/internal/config"
	"readvault/internal/ports"
)

// New resolves the configured backend by name. Callers should close the
// returned client if it implements io.Closer.
func New(ctx context.Context, cfg config.EnrichmentConfig) (ports.InferenceClient, error) {
	switch cfg.Backend {
	case "", "ollama":
		return NewOllamaClient(cfg.Endpoint, cfg.Model), nil
	case "gemini":
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("inference backend %q is not supported", cfg.Backend)
	}
}
