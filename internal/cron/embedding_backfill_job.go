package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/angelmondragon/fork-backend/pkg/logger"
	"github.com/angelmondragon/fork-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/multierr"
)

const (
	embeddingBackfillJobName = "embedding-backfill"
	defaultBackfillBatch     = 200
	defaultBackfillMaxBatch  = 50
)

type missingEmbeddingRepo interface {
	ListMissingEmbeddings(ctx context.Context, limit int) ([]models.FoodItem, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding *pgvector.Vector) error
}

type batchEmbedder interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
	EmbedAll(ctx context.Context, texts []string) ([]pgvector.Vector, error)
}

type EmbeddingBackfillJobParams struct {
	Logger     *logger.Logger
	Repository missingEmbeddingRepo
	Embedder   batchEmbedder
	Metrics    *metrics.CronJobMetrics
	BatchSize  int
	MaxBatches int
}

// NewEmbeddingBackfillJob embeds food items stored without a vector, such as
// rows imported in bulk or created while the embedding provider was down.
func NewEmbeddingBackfillJob(params EmbeddingBackfillJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("food repository required")
	}
	if params.Embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultBackfillBatch
	}
	maxBatches := params.MaxBatches
	if maxBatches <= 0 {
		maxBatches = defaultBackfillMaxBatch
	}
	return &embeddingBackfillJob{
		logg:       params.Logger,
		repo:       params.Repository,
		embedder:   params.Embedder,
		metrics:    params.Metrics,
		batch:      batch,
		maxBatches: maxBatches,
	}, nil
}

type embeddingBackfillJob struct {
	logg       *logger.Logger
	repo       missingEmbeddingRepo
	embedder   batchEmbedder
	metrics    *metrics.CronJobMetrics
	batch      int
	maxBatches int
}

func (j *embeddingBackfillJob) Name() string { return embeddingBackfillJobName }

// Run drains the backlog batch by batch. It stops when a batch comes back
// short, when a whole batch fails, or after maxBatches.
func (j *embeddingBackfillJob) Run(ctx context.Context) error {
	var errs error
	total := 0
	for i := 0; i < j.maxBatches; i++ {
		items, err := j.repo.ListMissingEmbeddings(ctx, j.batch)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("list missing embeddings: %w", err))
		}
		if len(items) == 0 {
			break
		}
		stored, err := j.embedBatch(ctx, items)
		errs = multierr.Append(errs, err)
		total += stored
		j.metrics.AddProcessed(embeddingBackfillJobName, stored)
		if stored == 0 || len(items) < j.batch {
			break
		}
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"items_embedded": total,
		"batch_size":     j.batch,
		"failures":       len(multierr.Errors(errs)),
	})
	j.logg.Info(logCtx, "embedding backfill complete")
	return errs
}

// embedBatch tries the whole batch at once and falls back to item-by-item
// so one bad row does not hold back the rest.
func (j *embeddingBackfillJob) embedBatch(ctx context.Context, items []models.FoodItem) (int, error) {
	texts := make([]string, len(items))
	for i := range items {
		texts[i] = items[i].Name
	}

	vectors, err := j.embedder.EmbedAll(ctx, texts)
	if err != nil {
		warnCtx := j.logg.WithField(ctx, "batch", len(items))
		j.logg.Warn(warnCtx, "batch embedding failed, retrying items one by one")
		return j.embedEach(ctx, items)
	}

	var errs error
	stored := 0
	for i := range items {
		vec := vectors[i]
		if err := j.repo.UpdateEmbedding(ctx, items[i].ID, &vec); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("store embedding %s: %w", items[i].ID, err))
			continue
		}
		stored++
	}
	return stored, errs
}

func (j *embeddingBackfillJob) embedEach(ctx context.Context, items []models.FoodItem) (int, error) {
	var errs error
	stored := 0
	for i := range items {
		vec, err := j.embedder.Embed(ctx, items[i].Name)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("embed %s: %w", items[i].ID, err))
			continue
		}
		if err := j.repo.UpdateEmbedding(ctx, items[i].ID, &vec); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("store embedding %s: %w", items[i].ID, err))
			continue
		}
		stored++
	}
	return stored, errs
}
