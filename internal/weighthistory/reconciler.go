package weighthistory

import (
	"context"
	"sort"
	"time"

	"github.com/angelmondragon/fork-backend/internal/ledger"
	"github.com/angelmondragon/fork-backend/pkg/db"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/angelmondragon/fork-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntryInput is one submitted point. A nil ID inserts a new point.
type EntryInput struct {
	ID        *uuid.UUID `json:"id"`
	Weight    float64    `json:"weight" validate:"gt=0"`
	CreatedAt string     `json:"created_at" validate:"required"`
}

// EntryDTO is the transport shape of a weight point.
type EntryDTO struct {
	ID        uuid.UUID `json:"id"`
	Weight    float64   `json:"weight"`
	CreatedAt string    `json:"created_at"`
}

func FromModels(entries []models.WeightHistoryEntry) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryDTO{ID: e.ID, Weight: e.Weight, CreatedAt: ledger.FormatDay(e.CreatedAt)})
	}
	return out
}

// Reconciler merges client-submitted weight series into storage.
type Reconciler interface {
	Reconcile(ctx context.Context, userID uuid.UUID, submitted []EntryInput) ([]models.WeightHistoryEntry, error)
	Record(ctx context.Context, userID uuid.UUID, weight float64, date time.Time) (*models.WeightHistoryEntry, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.WeightHistoryEntry, error)
	Latest(ctx context.Context, userID uuid.UUID) (*models.WeightHistoryEntry, error)
}

type reconciler struct {
	repo Repository
	tx   db.TxRunner
	logg *logger.Logger
}

func NewReconciler(repo Repository, tx db.TxRunner, logg *logger.Logger) (Reconciler, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight history repository is required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	return &reconciler{repo: repo, tx: tx, logg: logg}, nil
}

type parsedEntry struct {
	id     *uuid.UUID
	weight float64
	date   time.Time
}

func parse(submitted []EntryInput) ([]parsedEntry, error) {
	out := make([]parsedEntry, 0, len(submitted))
	for i, in := range submitted {
		if in.Weight <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight must be positive").
				WithDetails(map[string]any{"index": i})
		}
		date, err := ledger.ParseDay(in.CreatedAt)
		if err != nil {
			return nil, err
		}
		id := in.ID
		if id != nil && *id == uuid.Nil {
			id = nil
		}
		out = append(out, parsedEntry{id: id, weight: in.Weight, date: date})
	}
	return out, nil
}

// Reconcile treats submitted as the full series: stored points missing from it
// are deleted, points with a known id are updated and points without an id are
// inserted. The whole merge runs in one transaction.
func (r *reconciler) Reconcile(ctx context.Context, userID uuid.UUID, submitted []EntryInput) ([]models.WeightHistoryEntry, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	entries, err := parse(submitted)
	if err != nil {
		return nil, err
	}

	var result []models.WeightHistoryEntry
	err = r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := r.repo.WithTx(tx)
		stored, err := repo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		known := make(map[uuid.UUID]struct{}, len(stored))
		for _, s := range stored {
			known[s.ID] = struct{}{}
		}
		keep := make(map[uuid.UUID]struct{}, len(entries))
		for _, e := range entries {
			if e.id != nil {
				keep[*e.id] = struct{}{}
			}
		}

		var drop []uuid.UUID
		for _, s := range stored {
			if _, ok := keep[s.ID]; !ok {
				drop = append(drop, s.ID)
			}
		}
		if err := repo.DeleteByIDs(ctx, userID, drop); err != nil {
			return err
		}

		for _, e := range entries {
			if e.id == nil {
				if err := repo.Create(ctx, &models.WeightHistoryEntry{UserID: userID, Weight: e.weight, CreatedAt: e.date}); err != nil {
					return err
				}
				continue
			}
			if _, ok := known[*e.id]; !ok {
				r.warnUnknown(ctx, userID, *e.id)
				continue
			}
			if err := repo.Update(ctx, &models.WeightHistoryEntry{ID: *e.id, UserID: userID, Weight: e.weight, CreatedAt: e.date}); err != nil {
				return err
			}
		}

		result, err = repo.ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		if r.logg != nil {
			r.logg.Error(r.logg.WithUserID(ctx, userID.String()), "weight history reconcile failed", err)
		}
		return nil, err
	}
	sortNewestFirst(result)
	return result, nil
}

// Record sets the weight for one date, updating an existing point on that
// date or inserting a new one.
func (r *reconciler) Record(ctx context.Context, userID uuid.UUID, weight float64, date time.Time) (*models.WeightHistoryEntry, error) {
	if weight <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight must be positive")
	}
	day := ledger.Day(date)
	var entry *models.WeightHistoryEntry
	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := r.repo.WithTx(tx)
		existing, err := repo.FindByDate(ctx, userID, day)
		switch {
		case err == nil:
			existing.Weight = weight
			entry = existing
			return repo.Update(ctx, existing)
		case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
			entry = &models.WeightHistoryEntry{UserID: userID, Weight: weight, CreatedAt: day}
			return repo.Create(ctx, entry)
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *reconciler) List(ctx context.Context, userID uuid.UUID) ([]models.WeightHistoryEntry, error) {
	entries, err := r.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(entries)
	return entries, nil
}

func (r *reconciler) Latest(ctx context.Context, userID uuid.UUID) (*models.WeightHistoryEntry, error) {
	return r.repo.Latest(ctx, userID)
}

func (r *reconciler) warnUnknown(ctx context.Context, userID, id uuid.UUID) {
	if r.logg == nil {
		return
	}
	r.logg.Warn(r.logg.WithFields(ctx, map[string]any{
		"user_id":  userID.String(),
		"entry_id": id.String(),
	}), "ignoring weight entry with unknown id")
}

func sortNewestFirst(entries []models.WeightHistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
