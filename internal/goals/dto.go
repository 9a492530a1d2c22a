package goals

import (
	"time"

	"github.com/angelmondragon/fork-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/google/uuid"
)

const (
	DefaultCalorieTarget     = 2000
	DefaultProteinTarget     = 65
	DefaultCarbsTarget       = 250
	DefaultFatTarget         = 60
	DefaultCalorieBurnTarget = 200
)

// Targets is the full set of daily goals a snapshot captures.
type Targets struct {
	DailyCalorieTarget     int `json:"daily_calorie_target" validate:"gte=0"`
	DailyProteinTarget     int `json:"daily_protein_target" validate:"gte=0"`
	DailyCarbsTarget       int `json:"daily_carbs_target" validate:"gte=0"`
	DailyFatTarget         int `json:"daily_fat_target" validate:"gte=0"`
	DailyCalorieBurnTarget int `json:"daily_calorie_burn_target" validate:"gte=0"`
}

// DefaultTargets returns the targets assigned to new accounts.
func DefaultTargets() Targets {
	return Targets{
		DailyCalorieTarget:     DefaultCalorieTarget,
		DailyProteinTarget:     DefaultProteinTarget,
		DailyCarbsTarget:       DefaultCarbsTarget,
		DailyFatTarget:         DefaultFatTarget,
		DailyCalorieBurnTarget: DefaultCalorieBurnTarget,
	}
}

func (t Targets) Validate() error {
	if t.DailyCalorieTarget < 0 || t.DailyProteinTarget < 0 || t.DailyCarbsTarget < 0 ||
		t.DailyFatTarget < 0 || t.DailyCalorieBurnTarget < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "goal targets must be non-negative")
	}
	return nil
}

// Matches reports whether every target equals the snapshot's value.
func (t Targets) Matches(snapshot *models.GoalSnapshot) bool {
	if snapshot == nil {
		return false
	}
	return t == TargetsFromModel(snapshot)
}

// Snapshot builds the immutable row for these targets.
func (t Targets) Snapshot(userID uuid.UUID, createdAt time.Time) *models.GoalSnapshot {
	return &models.GoalSnapshot{
		UserID:                 userID,
		CreatedAt:              createdAt,
		DailyCalorieTarget:     t.DailyCalorieTarget,
		DailyProteinTarget:     t.DailyProteinTarget,
		DailyCarbsTarget:       t.DailyCarbsTarget,
		DailyFatTarget:         t.DailyFatTarget,
		DailyCalorieBurnTarget: t.DailyCalorieBurnTarget,
	}
}

func TargetsFromModel(snapshot *models.GoalSnapshot) Targets {
	return Targets{
		DailyCalorieTarget:     snapshot.DailyCalorieTarget,
		DailyProteinTarget:     snapshot.DailyProteinTarget,
		DailyCarbsTarget:       snapshot.DailyCarbsTarget,
		DailyFatTarget:         snapshot.DailyFatTarget,
		DailyCalorieBurnTarget: snapshot.DailyCalorieBurnTarget,
	}
}

// SnapshotDTO is the transport shape of a goal snapshot.
type SnapshotDTO struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Targets
}

func FromModel(snapshot *models.GoalSnapshot) *SnapshotDTO {
	if snapshot == nil {
		return nil
	}
	return &SnapshotDTO{
		ID:        snapshot.ID,
		CreatedAt: snapshot.CreatedAt,
		Targets:   TargetsFromModel(snapshot),
	}
}
