package activitylog

import (
	"math"

	"github.com/angelmondragon/fork-backend/internal/activities"
	"github.com/angelmondragon/fork-backend/internal/goals"
	"github.com/angelmondragon/fork-backend/internal/ledger"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/google/uuid"
)

// AddEntryInput logs a performed activity. Duration is in minutes; a nil
// CaloriesBurned is derived from the latest recorded weight.
type AddEntryInput struct {
	ActivityID     uuid.UUID `json:"activity_id" validate:"required"`
	Duration       float64   `json:"duration" validate:"gt=0"`
	CaloriesBurned *float64  `json:"calories_burned" validate:"omitempty,gte=0"`
}

func (in AddEntryInput) Validate() error {
	if in.ActivityID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "activity_id is required")
	}
	if in.Duration <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "duration must be positive")
	}
	if in.CaloriesBurned != nil && *in.CaloriesBurned < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "calories_burned must be non-negative")
	}
	return nil
}

// EntryPatch changes an entry in place; nil fields are left untouched.
type EntryPatch struct {
	Duration       *float64 `json:"duration" validate:"omitempty,gt=0"`
	CaloriesBurned *float64 `json:"calories_burned" validate:"omitempty,gte=0"`
}

func (p EntryPatch) Validate() error {
	if p.Duration != nil && *p.Duration <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "duration must be positive")
	}
	if p.CaloriesBurned != nil && *p.CaloriesBurned < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "calories_burned must be non-negative")
	}
	return nil
}

func (p EntryPatch) Apply(entry *models.ActivityEntry) {
	if p.Duration != nil {
		entry.Duration = *p.Duration
	}
	if p.CaloriesBurned != nil {
		v := *p.CaloriesBurned
		entry.CaloriesBurned = &v
	}
}

// BurnedCalories is perKgHour × weight × hours, rounded to one decimal.
func BurnedCalories(perKgHour, weight, minutes float64) float64 {
	return math.Round(perKgHour*weight*(minutes/60)*10) / 10
}

type EntryDTO struct {
	ID             uuid.UUID               `json:"id"`
	Duration       float64                 `json:"duration"`
	CaloriesBurned *float64                `json:"calories_burned"`
	Activity       *activities.ActivityDTO `json:"activity"`
}

type LogDTO struct {
	ID             uuid.UUID          `json:"id"`
	Date           string             `json:"date"`
	Goals          *goals.SnapshotDTO `json:"goals"`
	Entries        []EntryDTO         `json:"activity_entries"`
	CaloriesBurned float64            `json:"calories_burned"`
}

func EntryFromModel(entry *models.ActivityEntry) EntryDTO {
	return EntryDTO{
		ID:             entry.ID,
		Duration:       entry.Duration,
		CaloriesBurned: entry.CaloriesBurned,
		Activity:       activities.FromModel(entry.Activity),
	}
}

func FromModel(log *models.ActivityLog) *LogDTO {
	if log == nil {
		return nil
	}
	dto := &LogDTO{
		ID:      log.ID,
		Date:    ledger.FormatDay(log.Date),
		Goals:   goals.FromModel(log.Goals),
		Entries: make([]EntryDTO, 0, len(log.Entries)),
	}
	for i := range log.Entries {
		entry := &log.Entries[i]
		dto.Entries = append(dto.Entries, EntryFromModel(entry))
		if entry.CaloriesBurned != nil {
			dto.CaloriesBurned += *entry.CaloriesBurned
		}
	}
	dto.CaloriesBurned = math.Round(dto.CaloriesBurned*10) / 10
	return dto
}

func FromModels(logs []models.ActivityLog) []*LogDTO {
	out := make([]*LogDTO, 0, len(logs))
	for i := range logs {
		out = append(out, FromModel(&logs[i]))
	}
	return out
}
