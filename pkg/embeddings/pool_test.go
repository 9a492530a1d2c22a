package embeddings

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	embedFn func(ctx context.Context, text string) (pgvector.Vector, error)
}

func (s stubProvider) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	return s.embedFn(ctx, text)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	provider := stubProvider{embedFn: func(ctx context.Context, text string) (pgvector.Vector, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return pgvector.NewVector([]float32{float32(len(text))}), nil
	}}

	pool := NewPool(provider, 2)
	texts := []string{"a", "bb", "ccc", "dddd", "eeeee", "ffffff"}
	vectors, err := pool.EmbedAll(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))
	for i, vec := range vectors {
		assert.Equal(t, float32(len(texts[i])), vec.Slice()[0])
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestPoolDefaultsWorkers(t *testing.T) {
	assert.Equal(t, DefaultWorkers, NewPool(NewHashProvider(4), 0).Workers())
}

func TestPoolHonoursCancellationWhileWaiting(t *testing.T) {
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(1)
	provider := stubProvider{embedFn: func(ctx context.Context, text string) (pgvector.Vector, error) {
		started.Done()
		<-release
		return pgvector.NewVector([]float32{1}), nil
	}}
	pool := NewPool(provider, 1)

	go func() { _, _ = pool.Embed(context.Background(), "busy") }()
	started.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := pool.Embed(ctx, "waiting")
	close(release)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeResolution))
	assert.Equal(t, Source, pkgerrors.SourceOf(err))
}

func TestPoolWrapsProviderFailures(t *testing.T) {
	pool := NewPool(stubProvider{embedFn: func(context.Context, string) (pgvector.Vector, error) {
		return pgvector.Vector{}, errors.New("model unavailable")
	}}, 1)

	_, err := pool.Embed(context.Background(), "oats")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeResolution))
	assert.Equal(t, Source, pkgerrors.SourceOf(err))
}
