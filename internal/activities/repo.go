package activities

import (
	"context"
	"strings"

	"github.com/angelmondragon/fork-backend/internal/repo"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const entity = "activity"

// Repository persists the activity catalog.
type Repository interface {
	Create(ctx context.Context, activity *models.Activity) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id uuid.UUID) error
	SearchByName(ctx context.Context, query string, limit int) ([]models.Activity, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Activity, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) Create(ctx context.Context, activity *models.Activity) error {
	repo.EnsureID(&activity.ID)
	return repo.MapError(r.DB(ctx).Create(activity).Error, entity)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	var activity models.Activity
	if err := r.DB(ctx).Where("id = ?", id).Take(&activity).Error; err != nil {
		return nil, repo.MapError(err, entity)
	}
	return &activity, nil
}

func (r *repository) Update(ctx context.Context, activity *models.Activity) error {
	res := r.DB(ctx).
		Model(&models.Activity{}).
		Where("id = ?", activity.ID).
		Updates(map[string]any{
			"name":                        activity.Name,
			"calories_burned_per_kg_hour": activity.CaloriesBurnedPerKgHour,
		})
	if res.Error != nil {
		return repo.MapError(res.Error, entity)
	}
	if res.RowsAffected == 0 {
		return repo.MapError(gorm.ErrRecordNotFound, entity)
	}
	return nil
}

// Delete removes the activity. Activities referenced by a logged entry are
// refused with Conflict.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.DB(ctx)
	var refs int64
	if err := db.Model(&models.ActivityEntry{}).Where("activity_id = ?", id).Count(&refs).Error; err != nil {
		return repo.MapError(err, "activity entry")
	}
	if refs > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "activity is referenced by logged entries").
			WithDetails(map[string]any{"id": id.String(), "entries": refs})
	}
	res := db.Where("id = ?", id).Delete(&models.Activity{})
	if res.Error != nil {
		return repo.MapError(res.Error, entity)
	}
	if res.RowsAffected == 0 {
		return repo.MapError(gorm.ErrRecordNotFound, entity)
	}
	return nil
}

// SearchByName matches query as a case-insensitive substring of the name.
func (r *repository) SearchByName(ctx context.Context, query string, limit int) ([]models.Activity, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	var out []models.Activity
	if err := r.DB(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '\\'", pattern).
		Order("name ASC").
		Order("id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, repo.MapError(err, entity)
	}
	return out, nil
}

func (r *repository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Activity, error) {
	var out []models.Activity
	if err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, repo.MapError(err, entity)
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
