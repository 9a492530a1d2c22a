package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/pgvector/pgvector-go"
)

// HashProvider is a deterministic feature-hashing embedder for development and
// tests. Texts sharing words or character trigrams get positive similarity.
type HashProvider struct {
	dimensions int
}

func NewHashProvider(dimensions int) *HashProvider {
	if dimensions <= 0 {
		dimensions = defaultDimensions
	}
	return &HashProvider{dimensions: dimensions}
}

func (p *HashProvider) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	if err := ctx.Err(); err != nil {
		return pgvector.Vector{}, asResolution(err, "embedding cancelled")
	}
	normalized, err := normalizeInput(text)
	if err != nil {
		return pgvector.Vector{}, err
	}

	vec := make([]float32, p.dimensions)
	for _, token := range tokenize(normalized) {
		p.add(vec, "w:"+token, 2)
		padded := "^" + token + "$"
		runes := []rune(padded)
		for i := 0; i+3 <= len(runes); i++ {
			p.add(vec, "t:"+string(runes[i:i+3]), 1)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return pgvector.NewVector(vec), nil
}

// EmbedBatch embeds each text in order.
func (p *HashProvider) EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	out := make([]pgvector.Vector, len(texts))
	for i, text := range texts {
		vec, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (p *HashProvider) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(len(vec)))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Cosine returns the cosine similarity of a and b, or 0 when either is empty
// or the dimensions differ.
func Cosine(a, b pgvector.Vector) float64 {
	av, bv := a.Slice(), b.Slice()
	if len(av) == 0 || len(av) != len(bv) {
		return 0
	}
	var dot, na, nb float64
	for i := range av {
		dot += float64(av[i]) * float64(bv[i])
		na += float64(av[i]) * float64(av[i])
		nb += float64(bv[i]) * float64(bv[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
