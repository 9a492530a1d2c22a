package activitylog

import (
	"context"
	"time"

	"github.com/angelmondragon/fork-backend/internal/ledger"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/angelmondragon/fork-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/angelmondragon/fork-backend/pkg/logger"
	"github.com/google/uuid"
)

// ActivityLookup resolves the activity an entry references.
type ActivityLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
}

// WeightLookup returns the user's most recent weight point.
type WeightLookup interface {
	Latest(ctx context.Context, userID uuid.UUID) (*models.WeightHistoryEntry, error)
}

// Service is the activity ledger.
type Service interface {
	GetOrCreateLog(ctx context.Context, userID uuid.UUID, date time.Time) (*models.ActivityLog, error)
	GetLog(ctx context.Context, userID uuid.UUID, date time.Time) (*models.ActivityLog, error)
	GetLastLogs(ctx context.Context, userID uuid.UUID, n int) ([]models.ActivityLog, error)
	AddEntry(ctx context.Context, userID uuid.UUID, date time.Time, input AddEntryInput) (*models.ActivityEntry, error)
	UpdateEntry(ctx context.Context, userID uuid.UUID, date time.Time, entryID uuid.UUID, patch EntryPatch) (*models.ActivityEntry, error)
	RemoveEntry(ctx context.Context, userID uuid.UUID, date time.Time, entryID uuid.UUID) error
}

// ServiceParams groups dependencies for the activity log service.
type ServiceParams struct {
	Repo       Repository
	Goals      ledger.GoalsLookup
	Activities ActivityLookup
	Weights    WeightLookup
	Logger     *logger.Logger
}

type service struct {
	repo       Repository
	activities ActivityLookup
	weights    WeightLookup
	logg       *logger.Logger
	ledgr      ledger.GetOrCreateParams[models.ActivityLog]
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "activity log repository is required")
	}
	if params.Goals == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "goals lookup is required")
	}
	if params.Activities == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "activity lookup is required")
	}
	if params.Weights == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight lookup is required")
	}
	return &service{
		repo:       params.Repo,
		activities: params.Activities,
		weights:    params.Weights,
		logg:       params.Logger,
		ledgr: ledger.GetOrCreateParams[models.ActivityLog]{
			Kind:  enums.LedgerKindActivity,
			Store: params.Repo,
			Goals: params.Goals,
			Build: func(userID uuid.UUID, date time.Time, goalsID uuid.UUID) *models.ActivityLog {
				return &models.ActivityLog{UserID: userID, Date: date, GoalsID: goalsID}
			},
			Logger: params.Logger,
		},
	}, nil
}

func (s *service) GetOrCreateLog(ctx context.Context, userID uuid.UUID, date time.Time) (*models.ActivityLog, error) {
	log, err := ledger.GetOrCreate(ctx, s.ledgr, userID, date)
	if err != nil {
		s.logError(ctx, userID, date, "activity log get-or-create failed", err)
		return nil, err
	}
	return log, nil
}

func (s *service) GetLog(ctx context.Context, userID uuid.UUID, date time.Time) (*models.ActivityLog, error) {
	day := ledger.Day(date)
	log, err := s.repo.FindByDate(ctx, userID, day)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "no activity log for this date").
				WithDetails(map[string]any{"user_id": userID, "date": ledger.FormatDay(day)})
		}
		return nil, err
	}
	return log, nil
}

func (s *service) GetLastLogs(ctx context.Context, userID uuid.UUID, n int) ([]models.ActivityLog, error) {
	if n < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "n must not be negative")
	}
	return s.repo.ListLatest(ctx, userID, n)
}

func (s *service) AddEntry(ctx context.Context, userID uuid.UUID, date time.Time, input AddEntryInput) (*models.ActivityEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	log, err := s.GetOrCreateLog(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	activity, err := s.activities.FindByID(ctx, input.ActivityID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "activity not found").
				WithDetails(map[string]any{"activity_id": input.ActivityID})
		}
		return nil, err
	}

	calories := input.CaloriesBurned
	if calories == nil {
		calories, err = s.deriveCalories(ctx, userID, activity, input.Duration)
		if err != nil {
			return nil, err
		}
	}

	entry := &models.ActivityEntry{
		LogID:          log.ID,
		ActivityID:     activity.ID,
		Duration:       input.Duration,
		CaloriesBurned: calories,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		s.logError(ctx, userID, date, "add activity entry failed", err)
		return nil, err
	}
	return s.repo.FindEntry(ctx, log.ID, entry.ID)
}

// deriveCalories uses the newest weight point; without one the value stays nil.
func (s *service) deriveCalories(ctx context.Context, userID uuid.UUID, activity *models.Activity, minutes float64) (*float64, error) {
	latest, err := s.weights.Latest(ctx, userID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	burned := BurnedCalories(activity.CaloriesBurnedPerKgHour, latest.Weight, minutes)
	return &burned, nil
}

func (s *service) UpdateEntry(ctx context.Context, userID uuid.UUID, date time.Time, entryID uuid.UUID, patch EntryPatch) (*models.ActivityEntry, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	log, err := s.GetLog(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	entry, err := s.repo.FindEntry(ctx, log.ID, entryID)
	if err != nil {
		return nil, entryNotFound(err, entryID, log.Date)
	}
	patch.Apply(entry)
	if err := s.repo.UpdateEntry(ctx, entry); err != nil {
		s.logError(ctx, userID, date, "update activity entry failed", err)
		return nil, entryNotFound(err, entryID, log.Date)
	}
	return s.repo.FindEntry(ctx, log.ID, entryID)
}

func (s *service) RemoveEntry(ctx context.Context, userID uuid.UUID, date time.Time, entryID uuid.UUID) error {
	log, err := s.GetLog(ctx, userID, date)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteEntry(ctx, log.ID, entryID); err != nil {
		s.logError(ctx, userID, date, "remove activity entry failed", err)
		return entryNotFound(err, entryID, log.Date)
	}
	return nil
}

func (s *service) logError(ctx context.Context, userID uuid.UUID, date time.Time, msg string, err error) {
	if s.logg == nil || !ledger.Unexpected(err) {
		return
	}
	ctx = s.logg.WithLedger(s.logg.WithUserID(ctx, userID.String()), enums.LedgerKindActivity.String(), ledger.FormatDay(date))
	s.logg.Error(ctx, msg, err)
}

func entryNotFound(err error, entryID uuid.UUID, date time.Time) error {
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "activity entry not found in this log").
		WithDetails(map[string]any{"entry_id": entryID, "date": ledger.FormatDay(date)})
}
