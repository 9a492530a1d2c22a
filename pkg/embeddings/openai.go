package embeddings

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/pgvector/pgvector-go"
	openai "github.com/sashabaranov/go-openai"
)

const defaultDimensions = 384

type openAISettings struct {
	model      openai.EmbeddingModel
	dimensions int
	baseURL    string
	httpClient *http.Client
}

// Option configures the OpenAI provider.
type Option func(*openAISettings)

// WithModel selects the embedding model. Empty keeps the default.
func WithModel(model string) Option {
	return func(s *openAISettings) {
		if strings.TrimSpace(model) != "" {
			s.model = openai.EmbeddingModel(strings.TrimSpace(model))
		}
	}
}

// WithDimensions requests vectors truncated to n dimensions.
func WithDimensions(n int) Option {
	return func(s *openAISettings) {
		if n > 0 {
			s.dimensions = n
		}
	}
}

// WithBaseURL points the provider at a compatible API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(s *openAISettings) {
		s.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(s *openAISettings) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// OpenAIProvider computes embeddings through the OpenAI embeddings API.
type OpenAIProvider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewOpenAIProvider builds a provider for the given API key.
func NewOpenAIProvider(apiKey string, opts ...Option) (*OpenAIProvider, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "openai api key is required")
	}

	settings := openAISettings{
		model:      openai.SmallEmbedding3,
		dimensions: defaultDimensions,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}

	clientCfg := openai.DefaultConfig(key)
	if settings.baseURL != "" {
		clientCfg.BaseURL = settings.baseURL
	}
	if settings.httpClient != nil {
		clientCfg.HTTPClient = settings.httpClient
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      settings.model,
		dimensions: settings.dimensions,
	}, nil
}

// Embed returns the embedding of a single text.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return pgvector.Vector{}, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one request, returning vectors in input order.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	inputs := make([]string, len(texts))
	for i, text := range texts {
		normalized, err := normalizeInput(text)
		if err != nil {
			return nil, err
		}
		inputs[i] = normalized
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      inputs,
		Model:      p.model,
		Dimensions: p.dimensions,
	})
	if err != nil {
		return nil, pkgerrors.Resolution(Source, err, "openai embedding request failed")
	}
	if len(resp.Data) != len(inputs) {
		return nil, pkgerrors.Resolution(Source, fmt.Errorf("expected %d embeddings, got %d", len(inputs), len(resp.Data)), "openai embedding response incomplete")
	}

	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	out := make([]pgvector.Vector, len(data))
	for i, item := range data {
		if len(item.Embedding) != p.dimensions {
			return nil, pkgerrors.Resolution(Source, fmt.Errorf("expected %d dimensions, got %d", p.dimensions, len(item.Embedding)), "openai embedding dimension mismatch")
		}
		out[i] = pgvector.NewVector(item.Embedding)
	}
	return out, nil
}
