package activities

import (
	"context"
	"strings"

	"github.com/angelmondragon/fork-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/angelmondragon/fork-backend/pkg/logger"
	"github.com/angelmondragon/fork-backend/pkg/visibility"
	"github.com/google/uuid"
)

// Service manages the shared activity catalog. Every activity is readable by
// all users; only its owner may change it.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateActivityInput) (*models.Activity, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch UpdateActivityPatch) (*models.Activity, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Activity, error)
	Search(ctx context.Context, userID uuid.UUID, req SearchRequest) ([]models.Activity, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "activity repository is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateActivityInput) (*models.Activity, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	activity := &models.Activity{
		UserID:                  userID,
		Name:                    strings.TrimSpace(input.Name),
		CaloriesBurnedPerKgHour: input.CaloriesBurnedPerKgHour,
	}
	if err := s.repo.Create(ctx, activity); err != nil {
		s.logError(ctx, userID, "create activity failed", err)
		return nil, err
	}
	return activity, nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, patch UpdateActivityPatch) (*models.Activity, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	activity, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(activity)
	if err := s.repo.Update(ctx, activity); err != nil {
		s.logError(ctx, userID, "update activity failed", err)
		return nil, err
	}
	return activity, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logError(ctx, userID, "delete activity failed", err)
		return err
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, withID(err, id)
	}
	return activity, nil
}

// Search matches names case-insensitively. An empty query lists the caller's
// own activities.
func (s *service) Search(ctx context.Context, userID uuid.UUID, req SearchRequest) ([]models.Activity, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return s.repo.ListByOwner(ctx, userID)
	}
	limit := req.Limit
	switch {
	case limit <= 0:
		limit = DefaultSearchLimit
	case limit > MaxSearchLimit:
		limit = MaxSearchLimit
	}
	return s.repo.SearchByName(ctx, query, limit)
}

func (s *service) owned(ctx context.Context, userID, id uuid.UUID) (*models.Activity, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, withID(err, id)
	}
	if err := visibility.EnsureActivityOwner(activity, userID); err != nil {
		return nil, err
	}
	return activity, nil
}

func (s *service) logError(ctx context.Context, userID uuid.UUID, msg string, err error) {
	if s.logg != nil {
		s.logg.Error(s.logg.WithUserID(ctx, userID.String()), msg, err)
	}
}

func withID(err error, id uuid.UUID) error {
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "activity not found").
		WithDetails(map[string]any{"activity_id": id})
}
