package embeddings

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const DefaultWorkers = 4

// Pool bounds the number of embedding computations running at once. Callers
// waiting for a slot give up when their context is cancelled.
type Pool struct {
	provider Provider
	sem      *semaphore.Weighted
	workers  int
}

func NewPool(provider Provider, workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pool{
		provider: provider,
		sem:      semaphore.NewWeighted(int64(workers)),
		workers:  workers,
	}
}

// Workers reports the configured pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Embed runs provider.Embed once a slot is free.
func (p *Pool) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return pgvector.Vector{}, asResolution(err, "waiting for embedding worker")
	}
	defer p.sem.Release(1)

	vec, err := p.provider.Embed(ctx, text)
	if err != nil {
		return pgvector.Vector{}, asResolution(err, "embedding failed")
	}
	return vec, nil
}

// EmbedAll embeds texts concurrently, at most Workers at a time, and returns
// the vectors in input order. The first failure cancels the rest.
func (p *Pool) EmbedAll(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	out := make([]pgvector.Vector, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			vec, err := p.Embed(gctx, text)
			if err != nil {
				return err
			}
			out[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
