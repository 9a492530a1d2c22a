package embeddings

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/fork-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/pgvector/pgvector-go"
)

// Source is the resolution source tag attached to embedding failures.
const Source = "embedding"

// Provider turns text into a dense vector. Implementations must be safe for
// concurrent use.
type Provider interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
}

// BatchProvider is implemented by providers that can embed several texts in
// one upstream call.
type BatchProvider interface {
	Provider
	EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error)
}

// NewFromConfig builds the provider selected by cfg.Provider.
func NewFromConfig(cfg config.EmbeddingsConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case config.EmbeddingProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, WithModel(cfg.Model), WithDimensions(cfg.Dimensions))
	case config.EmbeddingProviderHash:
		return NewHashProvider(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Provider)
	}
}

func normalizeInput(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "text to embed is required")
	}
	return trimmed, nil
}

func asResolution(err error, message string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Resolution(Source, err, message)
}
