package users

import (
	"context"
	"time"

	"github.com/angelmondragon/fork-backend/internal/goals"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/angelmondragon/fork-backend/pkg/logger"
	"github.com/google/uuid"
)

// GoalsService is the part of the goals service profile updates route to.
type GoalsService interface {
	Current(ctx context.Context, userID uuid.UUID) (*models.GoalSnapshot, error)
	UpdateGoals(ctx context.Context, userID uuid.UUID, targets goals.Targets) (*models.GoalSnapshot, bool, error)
}

// WeightService records and lists weight points.
type WeightService interface {
	Record(ctx context.Context, userID uuid.UUID, weight float64, date time.Time) (*models.WeightHistoryEntry, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.WeightHistoryEntry, error)
}

type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (*Profile, error)
}

type ServiceParams struct {
	Repo    Repository
	Goals   GoalsService
	Weights WeightService
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo    Repository
	goals   GoalsService
	weights WeightService
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repository is required")
	}
	if params.Goals == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "goals service is required")
	}
	if params.Weights == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight service is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    params.Repo,
		goals:   params.Goals,
		weights: params.Weights,
		logg:    params.Logger,
		now:     now,
	}, nil
}

// GetProfile returns the user, their current goals (nil when none) and the
// weight history newest first.
func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.goals.Current(ctx, userID)
	if err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeNoGoals) {
		return nil, err
	}
	history, err := s.weights.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Goals: snapshot, WeightHistory: history}, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (*Profile, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProfile(ctx, userID, patch.columns()); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "username already taken")
		}
		s.logError(ctx, userID, "profile update failed", err)
		return nil, err
	}
	if patch.Goals != nil {
		if _, _, err := s.goals.UpdateGoals(ctx, userID, *patch.Goals); err != nil {
			s.logError(ctx, userID, "profile goals update failed", err)
			return nil, err
		}
	}
	if patch.Weight != nil {
		if _, err := s.weights.Record(ctx, userID, *patch.Weight, patch.weightDay(s.now())); err != nil {
			s.logError(ctx, userID, "profile weight record failed", err)
			return nil, err
		}
	}
	return s.GetProfile(ctx, userID)
}

func (s *service) logError(ctx context.Context, userID uuid.UUID, msg string, err error) {
	if s.logg == nil || pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		return
	}
	s.logg.Error(s.logg.WithUserID(ctx, userID.String()), msg, err)
}
