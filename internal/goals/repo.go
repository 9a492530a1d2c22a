package goals

import (
	"context"

	"github.com/angelmondragon/fork-backend/internal/repo"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists immutable goal snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, snapshot *models.GoalSnapshot) error
	Current(ctx context.Context, userID uuid.UUID) (*models.GoalSnapshot, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.GoalSnapshot, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a goal snapshot repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, snapshot *models.GoalSnapshot) error {
	repo.EnsureID(&snapshot.ID)
	return repo.MapError(r.DB(ctx).Create(snapshot).Error, "goal snapshot")
}

// Current returns the snapshot with the greatest created_at.
func (r *repository) Current(ctx context.Context, userID uuid.UUID) (*models.GoalSnapshot, error) {
	var snapshot models.GoalSnapshot
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Take(&snapshot).Error
	if err != nil {
		return nil, repo.MapError(err, "goal snapshot")
	}
	return &snapshot, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.GoalSnapshot, error) {
	var snapshots []models.GoalSnapshot
	if err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&snapshots).Error; err != nil {
		return nil, repo.MapError(err, "goal snapshot")
	}
	return snapshots, nil
}
