package foodlog

import (
	"math"

	"github.com/angelmondragon/fork-backend/internal/foods"
	"github.com/angelmondragon/fork-backend/internal/goals"
	"github.com/angelmondragon/fork-backend/internal/ledger"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/angelmondragon/fork-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/google/uuid"
)

const MaxNotesLength = 10000

// AddEntryInput is the payload for logging a food. Quantity is in grams.
type AddEntryInput struct {
	FoodID   uuid.UUID      `json:"food_id" validate:"required"`
	Quantity float64        `json:"quantity" validate:"gt=0"`
	MealType enums.MealType `json:"meal_type" validate:"omitempty,oneof=breakfast lunch dinner snack"`
}

func (in *AddEntryInput) Validate() error {
	if in.FoodID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "food_id is required")
	}
	if in.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if in.MealType == "" {
		in.MealType = enums.MealTypeSnack
	}
	if !in.MealType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid meal_type").
			WithDetails(map[string]any{"meal_type": in.MealType})
	}
	return nil
}

// EntryPatch changes an entry in place; nil fields are left untouched.
type EntryPatch struct {
	Quantity *float64        `json:"quantity" validate:"omitempty,gt=0"`
	MealType *enums.MealType `json:"meal_type" validate:"omitempty,oneof=breakfast lunch dinner snack"`
}

func (p EntryPatch) Validate() error {
	if p.Quantity != nil && *p.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if p.MealType != nil && !p.MealType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid meal_type").
			WithDetails(map[string]any{"meal_type": *p.MealType})
	}
	return nil
}

func (p EntryPatch) Apply(entry *models.FoodEntry) {
	if p.Quantity != nil {
		entry.Quantity = *p.Quantity
	}
	if p.MealType != nil {
		entry.MealType = *p.MealType
	}
}

// UpdateNotesInput replaces the free-text notes of a day.
type UpdateNotesInput struct {
	Notes string `json:"notes" validate:"max=10000"`
}

// Nutrition sums macro values in kcal and grams.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (n Nutrition) add(o Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
	}
}

func (n Nutrition) rounded() Nutrition {
	return Nutrition{
		Calories: round1(n.Calories),
		Protein:  round1(n.Protein),
		Carbs:    round1(n.Carbs),
		Fat:      round1(n.Fat),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// EntryNutrition scales the per-100 values of the entry's item by its quantity.
func EntryNutrition(entry *models.FoodEntry) Nutrition {
	if entry == nil || entry.FoodItem == nil {
		return Nutrition{}
	}
	factor := entry.Quantity / 100
	item := entry.FoodItem
	return Nutrition{
		Calories: item.CaloriesPer100 * factor,
		Protein:  item.ProteinPer100 * factor,
		Carbs:    item.CarbsPer100 * factor,
		Fat:      item.FatPer100 * factor,
	}
}

type EntryDTO struct {
	ID        uuid.UUID          `json:"id"`
	Quantity  float64            `json:"quantity"`
	MealType  enums.MealType     `json:"meal_type"`
	FoodItem  *foods.FoodItemDTO `json:"food_item"`
	Nutrition Nutrition          `json:"nutrition"`
}

type LogDTO struct {
	ID      uuid.UUID          `json:"id"`
	Date    string             `json:"date"`
	Notes   string             `json:"notes"`
	Goals   *goals.SnapshotDTO `json:"goals"`
	Entries []EntryDTO         `json:"food_entries"`
	Totals  Nutrition          `json:"totals"`
}

func EntryFromModel(entry *models.FoodEntry) EntryDTO {
	return EntryDTO{
		ID:        entry.ID,
		Quantity:  entry.Quantity,
		MealType:  entry.MealType,
		FoodItem:  foods.FromModel(entry.FoodItem),
		Nutrition: EntryNutrition(entry).rounded(),
	}
}

func FromModel(log *models.FoodLog) *LogDTO {
	if log == nil {
		return nil
	}
	dto := &LogDTO{
		ID:      log.ID,
		Date:    ledger.FormatDay(log.Date),
		Notes:   log.Notes,
		Goals:   goals.FromModel(log.Goals),
		Entries: make([]EntryDTO, 0, len(log.Entries)),
	}
	var totals Nutrition
	for i := range log.Entries {
		dto.Entries = append(dto.Entries, EntryFromModel(&log.Entries[i]))
		totals = totals.add(EntryNutrition(&log.Entries[i]))
	}
	dto.Totals = totals.rounded()
	return dto
}

func FromModels(logs []models.FoodLog) []*LogDTO {
	out := make([]*LogDTO, 0, len(logs))
	for i := range logs {
		out = append(out, FromModel(&logs[i]))
	}
	return out
}
