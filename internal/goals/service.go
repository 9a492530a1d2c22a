package goals

import (
	"context"
	"time"

	"github.com/angelmondragon/fork-backend/pkg/db"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/angelmondragon/fork-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LatestLogRepointer moves the most recent day log of one ledger kind onto a
// new goal snapshot. Implementations must only use tx.
type LatestLogRepointer interface {
	RepointLatest(ctx context.Context, tx *gorm.DB, userID, goalsID uuid.UUID) error
}

// Service versions a user's goals.
type Service interface {
	Current(ctx context.Context, userID uuid.UUID) (*models.GoalSnapshot, error)
	CreateGoals(ctx context.Context, userID uuid.UUID, targets Targets) (*models.GoalSnapshot, error)
	UpdateGoals(ctx context.Context, userID uuid.UUID, targets Targets) (*models.GoalSnapshot, bool, error)
}

// ServiceParams groups dependencies for the goals service.
type ServiceParams struct {
	Repo       Repository
	Tx         db.TxRunner
	Repointers []LatestLogRepointer
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	repo       Repository
	tx         db.TxRunner
	repointers []LatestLogRepointer
	logg       *logger.Logger
	now        func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "goal repository is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:       params.Repo,
		tx:         params.Tx,
		repointers: params.Repointers,
		logg:       params.Logger,
		now:        now,
	}, nil
}

// Current returns the newest snapshot or a NoGoals error.
func (s *service) Current(ctx context.Context, userID uuid.UUID) (*models.GoalSnapshot, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	snapshot, err := s.repo.Current(ctx, userID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNoGoals, err, "user has no goals").
				WithDetails(map[string]any{"user_id": userID})
		}
		return nil, err
	}
	return snapshot, nil
}

func (s *service) CreateGoals(ctx context.Context, userID uuid.UUID, targets Targets) (*models.GoalSnapshot, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := targets.Validate(); err != nil {
		return nil, err
	}
	snapshot := targets.Snapshot(userID, s.now().UTC())
	if err := s.repo.Create(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// UpdateGoals appends a snapshot when any target differs from the current one
// and repoints the latest log of every ledger kind to it. The boolean reports
// whether a snapshot was written.
func (s *service) UpdateGoals(ctx context.Context, userID uuid.UUID, targets Targets) (*models.GoalSnapshot, bool, error) {
	if err := targets.Validate(); err != nil {
		return nil, false, err
	}

	current, err := s.Current(ctx, userID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNoGoals) {
			created, err := s.CreateGoals(ctx, userID, targets)
			return created, err == nil, err
		}
		return nil, false, err
	}
	if targets.Matches(current) {
		return current, false, nil
	}

	createdAt := s.now().UTC()
	// current is defined by max(created_at); never tie with or precede it
	if !createdAt.After(current.CreatedAt) {
		createdAt = current.CreatedAt.Add(time.Millisecond)
	}
	snapshot := targets.Snapshot(userID, createdAt)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, snapshot); err != nil {
			return err
		}
		for _, repointer := range s.repointers {
			if err := repointer.RepointLatest(ctx, tx, userID, snapshot.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "goal update failed", err)
		}
		return nil, false, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(s.logg.WithUserID(ctx, userID.String()), "goals_id", snapshot.ID.String()), "goal snapshot appended")
	}
	return snapshot, true, nil
}
