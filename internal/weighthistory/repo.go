package weighthistory

import (
	"context"
	"time"

	"github.com/angelmondragon/fork-backend/internal/repo"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const entity = "weight history entry"

// Repository persists a user's weight series.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WeightHistoryEntry, error)
	Latest(ctx context.Context, userID uuid.UUID) (*models.WeightHistoryEntry, error)
	FindByDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.WeightHistoryEntry, error)
	Create(ctx context.Context, entry *models.WeightHistoryEntry) error
	Update(ctx context.Context, entry *models.WeightHistoryEntry) error
	DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// ListByUser returns the series newest date first, ties broken by id.
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WeightHistoryEntry, error) {
	var out []models.WeightHistoryEntry
	if err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, repo.MapError(err, entity)
	}
	return out, nil
}

func (r *repository) Latest(ctx context.Context, userID uuid.UUID) (*models.WeightHistoryEntry, error) {
	var entry models.WeightHistoryEntry
	if err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id ASC").
		Take(&entry).Error; err != nil {
		return nil, repo.MapError(err, entity)
	}
	return &entry, nil
}

func (r *repository) FindByDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.WeightHistoryEntry, error) {
	var entry models.WeightHistoryEntry
	if err := r.DB(ctx).
		Where("user_id = ? AND created_at = ?", userID, date).
		Order("id ASC").
		Take(&entry).Error; err != nil {
		return nil, repo.MapError(err, entity)
	}
	return &entry, nil
}

func (r *repository) Create(ctx context.Context, entry *models.WeightHistoryEntry) error {
	repo.EnsureID(&entry.ID)
	return repo.MapError(r.DB(ctx).Create(entry).Error, entity)
}

func (r *repository) Update(ctx context.Context, entry *models.WeightHistoryEntry) error {
	res := r.DB(ctx).
		Model(&models.WeightHistoryEntry{}).
		Where("id = ? AND user_id = ?", entry.ID, entry.UserID).
		Updates(map[string]any{"weight": entry.Weight, "created_at": entry.CreatedAt})
	if res.Error != nil {
		return repo.MapError(res.Error, entity)
	}
	if res.RowsAffected == 0 {
		return repo.MapError(gorm.ErrRecordNotFound, entity)
	}
	return nil
}

func (r *repository) DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return repo.MapError(r.DB(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.WeightHistoryEntry{}).Error, entity)
}
