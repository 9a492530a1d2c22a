package foodlog

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/fork-backend/internal/repo"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	logEntity   = "food log"
	entryEntity = "food entry"
)

// Repository persists food day logs and their entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.FoodLog, error)
	Create(ctx context.Context, log *models.FoodLog) error
	ListLatest(ctx context.Context, userID uuid.UUID, n int) ([]models.FoodLog, error)
	UpdateNotes(ctx context.Context, logID uuid.UUID, notes string) error
	RepointLatest(ctx context.Context, tx *gorm.DB, userID, goalsID uuid.UUID) error

	FindEntry(ctx context.Context, logID, entryID uuid.UUID) (*models.FoodEntry, error)
	CreateEntry(ctx context.Context, entry *models.FoodEntry) error
	UpdateEntry(ctx context.Context, entry *models.FoodEntry) error
	DeleteEntry(ctx context.Context, logID, entryID uuid.UUID) error
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

// withDetails preloads the goals snapshot and every entry with its food item
// and one level of ingredients.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Goals").
		Preload("Entries.FoodItem.Ingredients.Ingredient")
}

func (r *repository) FindByDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.FoodLog, error) {
	var log models.FoodLog
	if err := withDetails(r.DB(ctx)).
		Where("user_id = ? AND date = ?", userID, date).
		Take(&log).Error; err != nil {
		return nil, repo.MapError(err, logEntity)
	}
	return &log, nil
}

func (r *repository) Create(ctx context.Context, log *models.FoodLog) error {
	repo.EnsureID(&log.ID)
	return repo.MapError(r.DB(ctx).Omit(clause.Associations).Create(log).Error, logEntity)
}

// ListLatest returns the user's logs newest date first. n == 0 means no limit.
func (r *repository) ListLatest(ctx context.Context, userID uuid.UUID, n int) ([]models.FoodLog, error) {
	query := withDetails(r.DB(ctx)).
		Where("user_id = ?", userID).
		Order("date DESC")
	if n > 0 {
		query = query.Limit(n)
	}
	var logs []models.FoodLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, repo.MapError(err, logEntity)
	}
	return logs, nil
}

func (r *repository) UpdateNotes(ctx context.Context, logID uuid.UUID, notes string) error {
	res := r.DB(ctx).Model(&models.FoodLog{}).Where("id = ?", logID).Update("notes", notes)
	if res.Error != nil {
		return repo.MapError(res.Error, logEntity)
	}
	if res.RowsAffected == 0 {
		return repo.MapError(gorm.ErrRecordNotFound, logEntity)
	}
	return nil
}

// RepointLatest binds the user's most recent food log to goalsID. A user
// without logs is left untouched.
func (r *repository) RepointLatest(ctx context.Context, tx *gorm.DB, userID, goalsID uuid.UUID) error {
	db := tx.WithContext(ctx)
	var latest models.FoodLog
	err := db.Select("id").
		Where("user_id = ?", userID).
		Order("date DESC").
		Take(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return repo.MapError(err, logEntity)
	}
	return repo.MapError(db.Model(&models.FoodLog{}).
		Where("id = ?", latest.ID).
		Update("goals_id", goalsID).Error, logEntity)
}

func (r *repository) FindEntry(ctx context.Context, logID, entryID uuid.UUID) (*models.FoodEntry, error) {
	var entry models.FoodEntry
	if err := r.DB(ctx).
		Preload("FoodItem.Ingredients.Ingredient").
		Where("id = ? AND log_id = ?", entryID, logID).
		Take(&entry).Error; err != nil {
		return nil, repo.MapError(err, entryEntity)
	}
	return &entry, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.FoodEntry) error {
	repo.EnsureID(&entry.ID)
	return repo.MapError(r.DB(ctx).Omit(clause.Associations).Create(entry).Error, entryEntity)
}

func (r *repository) UpdateEntry(ctx context.Context, entry *models.FoodEntry) error {
	res := r.DB(ctx).
		Model(&models.FoodEntry{}).
		Where("id = ? AND log_id = ?", entry.ID, entry.LogID).
		Updates(map[string]any{"quantity": entry.Quantity, "meal_type": entry.MealType})
	if res.Error != nil {
		return repo.MapError(res.Error, entryEntity)
	}
	if res.RowsAffected == 0 {
		return repo.MapError(gorm.ErrRecordNotFound, entryEntity)
	}
	return nil
}

func (r *repository) DeleteEntry(ctx context.Context, logID, entryID uuid.UUID) error {
	res := r.DB(ctx).Where("id = ? AND log_id = ?", entryID, logID).Delete(&models.FoodEntry{})
	if res.Error != nil {
		return repo.MapError(res.Error, entryEntity)
	}
	if res.RowsAffected == 0 {
		return repo.MapError(gorm.ErrRecordNotFound, entryEntity)
	}
	return nil
}
