package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/fork-backend/internal/foods"
	"github.com/angelmondragon/fork-backend/internal/repo/repotest"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/angelmondragon/fork-backend/pkg/embeddings"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type fakeEmbedder struct {
	embed    func(ctx context.Context, text string) (pgvector.Vector, error)
	embedAll func(ctx context.Context, texts []string) ([]pgvector.Vector, error)
}

func (f fakeEmbedder) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	return f.embed(ctx, text)
}

func (f fakeEmbedder) EmbedAll(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	return f.embedAll(ctx, texts)
}

type memoryFoods struct {
	items   []models.FoodItem
	updates map[uuid.UUID]pgvector.Vector
}

func (m *memoryFoods) ListMissingEmbeddings(_ context.Context, limit int) ([]models.FoodItem, error) {
	var out []models.FoodItem
	for _, item := range m.items {
		if _, done := m.updates[item.ID]; done {
			continue
		}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryFoods) UpdateEmbedding(_ context.Context, id uuid.UUID, v *pgvector.Vector) error {
	m.updates[id] = *v
	return nil
}

func newMemoryFoods(names ...string) *memoryFoods {
	m := &memoryFoods{updates: map[uuid.UUID]pgvector.Vector{}}
	for _, name := range names {
		m.items = append(m.items, models.FoodItem{ID: uuid.New(), Name: name})
	}
	return m
}

func TestBackfillEmbedsEveryMissingItemAcrossBatches(t *testing.T) {
	conn := repotest.NewDB(t)
	user := repotest.SeedUser(t, conn)
	repo := foods.NewRepository(conn)
	for _, name := range []string{"Apple", "Banana", "Oat milk", "Rye bread", "Lentils"} {
		repotest.SeedFood(t, conn, user.ID, name)
	}

	job, err := NewEmbeddingBackfillJob(EmbeddingBackfillJobParams{
		Logger:     testLogger(),
		Repository: repo,
		Embedder:   embeddings.NewPool(embeddings.NewHashProvider(16), 2),
		BatchSize:  2,
	})
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background()))

	missing, err := repo.ListMissingEmbeddings(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestBackfillFallsBackToSingleItemsAndReportsFailures(t *testing.T) {
	store := newMemoryFoods("good", "bad", "fine")
	embedder := fakeEmbedder{
		embedAll: func(context.Context, []string) ([]pgvector.Vector, error) {
			return nil, errors.New("batch rejected")
		},
		embed: func(_ context.Context, text string) (pgvector.Vector, error) {
			if text == "bad" {
				return pgvector.Vector{}, errors.New("provider refused")
			}
			return pgvector.NewVector([]float32{1, 0}), nil
		},
	}
	job, err := NewEmbeddingBackfillJob(EmbeddingBackfillJobParams{
		Logger:     testLogger(),
		Repository: store,
		Embedder:   embedder,
		BatchSize:  10,
	})
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Len(t, store.updates, 2)
}

func TestBackfillStopsWhenNothingProgresses(t *testing.T) {
	store := newMemoryFoods("a", "b")
	calls := 0
	embedder := fakeEmbedder{
		embedAll: func(context.Context, []string) ([]pgvector.Vector, error) {
			calls++
			return nil, errors.New("down")
		},
		embed: func(context.Context, string) (pgvector.Vector, error) {
			return pgvector.Vector{}, errors.New("down")
		},
	}
	job, err := NewEmbeddingBackfillJob(EmbeddingBackfillJobParams{
		Logger:     testLogger(),
		Repository: store,
		Embedder:   embedder,
		BatchSize:  2,
	})
	require.NoError(t, err)
	require.Error(t, job.Run(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Empty(t, store.updates)
}

func TestNewEmbeddingBackfillJobRequiresDeps(t *testing.T) {
	_, err := NewEmbeddingBackfillJob(EmbeddingBackfillJobParams{})
	require.Error(t, err)
	_, err = NewEmbeddingBackfillJob(EmbeddingBackfillJobParams{Logger: testLogger(), Repository: newMemoryFoods()})
	require.Error(t, err)
}
