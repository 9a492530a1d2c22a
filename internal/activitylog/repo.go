package activitylog

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
	logEntity   = "activity log"
	entryEntity = "activity entry"
)

// Repository persists activity day logs and their entries.
type Repository interface {
	FindByDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.ActivityLog, error)
	Create(ctx context.Context, log *models.ActivityLog) error
	ListLatest(ctx context.Context, userID uuid.UUID, n int) ([]models.ActivityLog, error)
	RepointLatest(ctx context.Context, tx *gorm.DB, userID, goalsID uuid.UUID) error

	FindEntry(ctx context.Context, logID, entryID uuid.UUID) (*models.ActivityEntry, error)
	CreateEntry(ctx context.Context, entry *models.ActivityEntry) error
	UpdateEntry(ctx context.Context, entry *models.ActivityEntry) error
	DeleteEntry(ctx context.Context, logID, entryID uuid.UUID) error
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Goals").Preload("Entries.Activity")
}

func (r *repository) FindByDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.ActivityLog, error) {
	var log models.ActivityLog
	if err := withDetails(r.DB(ctx)).
		Where("user_id = ? AND date = ?", userID, date).
		Take(&log).Error; err != nil {
		return nil, repo.MapError(err, logEntity)
	}
	return &log, nil
}

func (r *repository) Create(ctx context.Context, log *models.ActivityLog) error {
	repo.EnsureID(&log.ID)
	return repo.MapError(r.DB(ctx).Omit(clause.Associations).Create(log).Error, logEntity)
}

func (r *repository) ListLatest(ctx context.Context, userID uuid.UUID, n int) ([]models.ActivityLog, error) {
	query := withDetails(r.DB(ctx)).
		Where("user_id = ?", userID).
		Order("date DESC")
	if n > 0 {
		query = query.Limit(n)
	}
	var logs []models.ActivityLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, repo.MapError(err, logEntity)
	}
	return logs, nil
}

// RepointLatest binds the user's most recent activity log to goalsID.
func (r *repository) RepointLatest(ctx context.Context, tx *gorm.DB, userID, goalsID uuid.UUID) error {
	db := tx.WithContext(ctx)
	var latest models.ActivityLog
	if err := db.Select("id").
		Where("user_id = ?", userID).
		Order("date DESC").
		Take(&latest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return repo.MapError(err, logEntity)
	}
	return repo.MapError(db.Model(&models.ActivityLog{}).
		Where("id = ?", latest.ID).
		Update("goals_id", goalsID).Error, logEntity)
}

func (r *repository) FindEntry(ctx context.Context, logID, entryID uuid.UUID) (*models.ActivityEntry, error) {
	var entry models.ActivityEntry
	if err := r.DB(ctx).
		Preload("Activity").
		Where("id = ? AND log_id = ?", entryID, logID).
		Take(&entry).Error; err != nil {
		return nil, repo.MapError(err, entryEntity)
	}
	return &entry, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.ActivityEntry) error {
	repo.EnsureID(&entry.ID)
	return repo.MapError(r.DB(ctx).Omit(clause.Associations).Create(entry).Error, entryEntity)
}

func (r *repository) UpdateEntry(ctx context.Context, entry *models.ActivityEntry) error {
	res := r.DB(ctx).
		Model(&models.ActivityEntry{}).
		Where("id = ? AND log_id = ?", entry.ID, entry.LogID).
		Updates(map[string]any{"duration": entry.Duration, "calories_burned": entry.CaloriesBurned})
	if res.Error != nil {
		return repo.MapError(res.Error, entryEntity)
	}
	if res.RowsAffected == 0 {
		return repo.MapError(gorm.ErrRecordNotFound, entryEntity)
	}
	return nil
}

func (r *repository) DeleteEntry(ctx context.Context, logID, entryID uuid.UUID) error {
	res := r.DB(ctx).Where("id = ? AND log_id = ?", entryID, logID).Delete(&models.ActivityEntry{})
	if res.Error != nil {
		return repo.MapError(res.Error, entryEntity)
	}
	if res.RowsAffected == 0 {
		return repo.MapError(gorm.ErrRecordNotFound, entryEntity)
	}
	return nil
}
