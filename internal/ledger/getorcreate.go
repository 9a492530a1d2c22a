package ledger

import (
	"context"
	"time"

	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/angelmondragon/fork-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/angelmondragon/fork-backend/pkg/logger"
	"github.com/google/uuid"
)

// Store is the persistence surface a day-log kind must provide.
type Store[L any] interface {
	FindByDate(ctx context.Context, userID uuid.UUID, date time.Time) (*L, error)
	Create(ctx context.Context, log *L) error
}

// GoalsLookup resolves the snapshot new logs are bound to.
type GoalsLookup interface {
	Current(ctx context.Context, userID uuid.UUID) (*models.GoalSnapshot, error)
}

// GetOrCreateParams describes one ledger kind.
type GetOrCreateParams[L any] struct {
	Kind   enums.LedgerKind
	Store  Store[L]
	Goals  GoalsLookup
	Build  func(userID uuid.UUID, date time.Time, goalsID uuid.UUID) *L
	Logger *logger.Logger
}

// GetOrCreate returns the log of userID for date, creating it against the
// current goal snapshot when absent. Losing an insert race to a concurrent
// request is not an error: the winner's row is re-read and returned.
func GetOrCreate[L any](ctx context.Context, p GetOrCreateParams[L], userID uuid.UUID, date time.Time) (*L, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	day := Day(date)

	existing, err := p.Store.FindByDate(ctx, userID, day)
	if err == nil {
		return existing, nil
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return nil, err
	}

	snapshot, err := p.Goals.Current(ctx, userID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNoGoals, err, "user has no goals").
				WithDetails(map[string]any{"user_id": userID})
		}
		return nil, err
	}

	if err := p.Store.Create(ctx, p.Build(userID, day, snapshot.ID)); err != nil {
		if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			return nil, err
		}
		if p.Logger != nil {
			p.Logger.Debug(p.Logger.WithLedger(ctx, string(p.Kind), FormatDay(day)), "day log created concurrently, re-reading")
		}
		winner, refetchErr := p.Store.FindByDate(ctx, userID, day)
		if refetchErr != nil {
			if pkgerrors.IsCode(refetchErr, pkgerrors.CodeNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "day log could not be created").
					WithDetails(map[string]any{"user_id": userID, "date": FormatDay(day), "kind": p.Kind})
			}
			return nil, refetchErr
		}
		return winner, nil
	}

	return p.Store.FindByDate(ctx, userID, day)
}
