package foodlog

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/fork-backend/internal/ledger"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/angelmondragon/fork-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/angelmondragon/fork-backend/pkg/logger"
	"github.com/angelmondragon/fork-backend/pkg/visibility"
	"github.com/google/uuid"
)

// FoodLookup resolves the catalog item an entry references.
type FoodLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.FoodItem, error)
}

// Service is the nutrition ledger.
type Service interface {
	GetOrCreateLog(ctx context.Context, userID uuid.UUID, date time.Time) (*models.FoodLog, error)
	GetLog(ctx context.Context, userID uuid.UUID, date time.Time) (*models.FoodLog, error)
	GetLastLogs(ctx context.Context, userID uuid.UUID, n int) ([]models.FoodLog, error)
	UpdateNotes(ctx context.Context, userID uuid.UUID, date time.Time, notes string) (*models.FoodLog, error)
	AddEntry(ctx context.Context, userID uuid.UUID, date time.Time, input AddEntryInput) (*models.FoodEntry, error)
	UpdateEntry(ctx context.Context, userID uuid.UUID, date time.Time, entryID uuid.UUID, patch EntryPatch) (*models.FoodEntry, error)
	RemoveEntry(ctx context.Context, userID uuid.UUID, date time.Time, entryID uuid.UUID) error
}

// ServiceParams groups dependencies for the food log service.
type ServiceParams struct {
	Repo   Repository
	Goals  ledger.GoalsLookup
	Foods  FoodLookup
	Logger *logger.Logger
}

type service struct {
	repo  Repository
	foods FoodLookup
	logg  *logger.Logger
	ledgr ledger.GetOrCreateParams[models.FoodLog]
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "food log repository is required")
	}
	if params.Goals == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "goals lookup is required")
	}
	if params.Foods == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "food lookup is required")
	}
	return &service{
		repo:  params.Repo,
		foods: params.Foods,
		logg:  params.Logger,
		ledgr: ledger.GetOrCreateParams[models.FoodLog]{
			Kind:   enums.LedgerKindFood,
			Store:  params.Repo,
			Goals:  params.Goals,
			Build:  newLog,
			Logger: params.Logger,
		},
	}, nil
}

func newLog(userID uuid.UUID, date time.Time, goalsID uuid.UUID) *models.FoodLog {
	return &models.FoodLog{UserID: userID, Date: date, GoalsID: goalsID}
}

func (s *service) GetOrCreateLog(ctx context.Context, userID uuid.UUID, date time.Time) (*models.FoodLog, error) {
	log, err := ledger.GetOrCreate(ctx, s.ledgr, userID, date)
	if err != nil {
		s.logError(ctx, userID, date, "food log get-or-create failed", err)
		return nil, err
	}
	return log, nil
}

func (s *service) GetLog(ctx context.Context, userID uuid.UUID, date time.Time) (*models.FoodLog, error) {
	day := ledger.Day(date)
	log, err := s.repo.FindByDate(ctx, userID, day)
	if err != nil {
		return nil, withLogDetails(err, userID, day)
	}
	return log, nil
}

// GetLastLogs returns up to n logs, newest date first; n == 0 returns all.
func (s *service) GetLastLogs(ctx context.Context, userID uuid.UUID, n int) ([]models.FoodLog, error) {
	if n < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "n must not be negative")
	}
	logs, err := s.repo.ListLatest(ctx, userID, n)
	if err != nil {
		s.logError(ctx, userID, time.Time{}, "list food logs failed", err)
		return nil, err
	}
	return logs, nil
}

func (s *service) UpdateNotes(ctx context.Context, userID uuid.UUID, date time.Time, notes string) (*models.FoodLog, error) {
	if len(notes) > MaxNotesLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notes are too long")
	}
	log, err := s.GetOrCreateLog(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateNotes(ctx, log.ID, strings.TrimSpace(notes)); err != nil {
		s.logError(ctx, userID, date, "update notes failed", err)
		return nil, err
	}
	return s.repo.FindByDate(ctx, userID, log.Date)
}

func (s *service) AddEntry(ctx context.Context, userID uuid.UUID, date time.Time, input AddEntryInput) (*models.FoodEntry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	log, err := s.GetOrCreateLog(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	item, err := s.foods.FindByID(ctx, input.FoodID)
	if err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return nil, err
	}
	if err := visibility.EnsureFoodVisible(item, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "food item not found").
			WithDetails(map[string]any{"food_id": input.FoodID})
	}

	entry := &models.FoodEntry{
		LogID:    log.ID,
		FoodID:   input.FoodID,
		Quantity: input.Quantity,
		MealType: input.MealType,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		s.logError(ctx, userID, date, "add food entry failed", err)
		return nil, err
	}
	if s.logg != nil {
		s.logg.Debug(s.logg.WithField(s.ctx(ctx, userID, date), "entry_id", entry.ID.String()), "food entry added")
	}
	return s.repo.FindEntry(ctx, log.ID, entry.ID)
}

func (s *service) UpdateEntry(ctx context.Context, userID uuid.UUID, date time.Time, entryID uuid.UUID, patch EntryPatch) (*models.FoodEntry, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	log, err := s.GetLog(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	entry, err := s.repo.FindEntry(ctx, log.ID, entryID)
	if err != nil {
		return nil, withEntryDetails(err, entryID, log.Date)
	}
	patch.Apply(entry)
	if err := s.repo.UpdateEntry(ctx, entry); err != nil {
		s.logError(ctx, userID, date, "update food entry failed", err)
		return nil, withEntryDetails(err, entryID, log.Date)
	}
	return s.repo.FindEntry(ctx, log.ID, entryID)
}

func (s *service) RemoveEntry(ctx context.Context, userID uuid.UUID, date time.Time, entryID uuid.UUID) error {
	log, err := s.GetLog(ctx, userID, date)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteEntry(ctx, log.ID, entryID); err != nil {
		if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			s.logError(ctx, userID, date, "remove food entry failed", err)
		}
		return withEntryDetails(err, entryID, log.Date)
	}
	return nil
}

func (s *service) ctx(ctx context.Context, userID uuid.UUID, date time.Time) context.Context {
	ctx = s.logg.WithUserID(ctx, userID.String())
	if date.IsZero() {
		return ctx
	}
	return s.logg.WithLedger(ctx, enums.LedgerKindFood.String(), ledger.FormatDay(date))
}

func (s *service) logError(ctx context.Context, userID uuid.UUID, date time.Time, msg string, err error) {
	if s.logg == nil || !ledger.Unexpected(err) {
		return
	}
	s.logg.Error(s.ctx(ctx, userID, date), msg, err)
}

func withLogDetails(err error, userID uuid.UUID, date time.Time) error {
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "no food log for this date").
		WithDetails(map[string]any{"user_id": userID, "date": ledger.FormatDay(date)})
}

func withEntryDetails(err error, entryID uuid.UUID, date time.Time) error {
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "food entry not found in this log").
		WithDetails(map[string]any{"entry_id": entryID, "date": ledger.FormatDay(date)})
}
