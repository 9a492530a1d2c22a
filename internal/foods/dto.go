package foods

import (
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/angelmondragon/fork-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/google/uuid"
)

// UnsavedID marks items resolved from an external catalog that have no row.
var UnsavedID = uuid.Nil

const defaultBrand = "Generic"

// IngredientInput references an existing item as a component.
type IngredientInput struct {
	FoodID   uuid.UUID `json:"food_id" validate:"required"`
	Quantity float64   `json:"quantity" validate:"gt=0"`
}

// CreateFoodInput is the payload for a new catalog item.
type CreateFoodInput struct {
	Name           string            `json:"name" validate:"required,max=255"`
	Brand          string            `json:"brand" validate:"max=255"`
	Description    *string           `json:"description" validate:"omitempty,max=1000"`
	Barcode        *string           `json:"barcode" validate:"omitempty,max=50"`
	Private        bool              `json:"private"`
	Hidden         bool              `json:"hidden"`
	ServingSize    float64           `json:"serving_size" validate:"gt=0"`
	ServingUnit    string            `json:"serving_unit" validate:"required,max=20"`
	CaloriesPer100 float64           `json:"calories_per_100" validate:"gte=0"`
	ProteinPer100  float64           `json:"protein_per_100" validate:"gte=0"`
	CarbsPer100    float64           `json:"carbs_per_100" validate:"gte=0"`
	FatPer100      float64           `json:"fat_per_100" validate:"gte=0"`
	Ingredients    []IngredientInput `json:"ingredients" validate:"omitempty,dive"`
}

func (in CreateFoodInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if in.ServingSize <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "serving_size must be positive")
	}
	if strings.TrimSpace(in.ServingUnit) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "serving_unit is required")
	}
	if in.CaloriesPer100 < 0 || in.ProteinPer100 < 0 || in.CarbsPer100 < 0 || in.FatPer100 < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "nutrition values must be non-negative")
	}
	return validateIngredients(in.Ingredients)
}

func (in CreateFoodInput) toModel(userID uuid.UUID) *models.FoodItem {
	brand := strings.TrimSpace(in.Brand)
	if brand == "" {
		brand = defaultBrand
	}
	return &models.FoodItem{
		UserID:         userID,
		Private:        in.Private,
		Hidden:         in.Hidden,
		Name:           strings.TrimSpace(in.Name),
		Brand:          brand,
		Description:    in.Description,
		Barcode:        normalizeBarcode(in.Barcode),
		ServingSize:    in.ServingSize,
		ServingUnit:    strings.TrimSpace(in.ServingUnit),
		CaloriesPer100: in.CaloriesPer100,
		ProteinPer100:  in.ProteinPer100,
		CarbsPer100:    in.CarbsPer100,
		FatPer100:      in.FatPer100,
		Ingredients:    toEdges(in.Ingredients),
	}
}

// UpdateFoodPatch carries optional changes; nil fields are left untouched.
// A non-nil Ingredients replaces the whole edge set.
type UpdateFoodPatch struct {
	Name           *string            `json:"name" validate:"omitempty,max=255"`
	Brand          *string            `json:"brand" validate:"omitempty,max=255"`
	Description    *string            `json:"description" validate:"omitempty,max=1000"`
	Barcode        *string            `json:"barcode" validate:"omitempty,max=50"`
	Private        *bool              `json:"private"`
	Hidden         *bool              `json:"hidden"`
	ServingSize    *float64           `json:"serving_size" validate:"omitempty,gt=0"`
	ServingUnit    *string            `json:"serving_unit" validate:"omitempty,max=20"`
	CaloriesPer100 *float64           `json:"calories_per_100" validate:"omitempty,gte=0"`
	ProteinPer100  *float64           `json:"protein_per_100" validate:"omitempty,gte=0"`
	CarbsPer100    *float64           `json:"carbs_per_100" validate:"omitempty,gte=0"`
	FatPer100      *float64           `json:"fat_per_100" validate:"omitempty,gte=0"`
	Ingredients    *[]IngredientInput `json:"ingredients"`
}

func (p UpdateFoodPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
	}
	if p.ServingSize != nil && *p.ServingSize <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "serving_size must be positive")
	}
	if p.ServingUnit != nil && strings.TrimSpace(*p.ServingUnit) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "serving_unit cannot be empty")
	}
	for _, v := range []*float64{p.CaloriesPer100, p.ProteinPer100, p.CarbsPer100, p.FatPer100} {
		if v != nil && *v < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "nutrition values must be non-negative")
		}
	}
	if p.Ingredients != nil {
		return validateIngredients(*p.Ingredients)
	}
	return nil
}

// Apply merges the scalar fields of the patch into item and reports whether
// the name changed.
func (p UpdateFoodPatch) Apply(item *models.FoodItem) bool {
	nameChanged := false
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		nameChanged = name != item.Name
		item.Name = name
	}
	if p.Brand != nil {
		item.Brand = strings.TrimSpace(*p.Brand)
		if item.Brand == "" {
			item.Brand = defaultBrand
		}
	}
	if p.Description != nil {
		item.Description = p.Description
	}
	if p.Barcode != nil {
		item.Barcode = normalizeBarcode(p.Barcode)
	}
	if p.Private != nil {
		item.Private = *p.Private
	}
	if p.Hidden != nil {
		item.Hidden = *p.Hidden
	}
	if p.ServingSize != nil {
		item.ServingSize = *p.ServingSize
	}
	if p.ServingUnit != nil {
		item.ServingUnit = strings.TrimSpace(*p.ServingUnit)
	}
	if p.CaloriesPer100 != nil {
		item.CaloriesPer100 = *p.CaloriesPer100
	}
	if p.ProteinPer100 != nil {
		item.ProteinPer100 = *p.ProteinPer100
	}
	if p.CarbsPer100 != nil {
		item.CarbsPer100 = *p.CarbsPer100
	}
	if p.FatPer100 != nil {
		item.FatPer100 = *p.FatPer100
	}
	return nameChanged
}

func validateIngredients(in []IngredientInput) error {
	seen := make(map[uuid.UUID]struct{}, len(in))
	for _, ing := range in {
		if ing.FoodID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "ingredient food_id is required")
		}
		if ing.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "ingredient quantity must be positive").
				WithDetails(map[string]any{"food_id": ing.FoodID})
		}
		if _, dup := seen[ing.FoodID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "ingredient listed twice").
				WithDetails(map[string]any{"food_id": ing.FoodID})
		}
		seen[ing.FoodID] = struct{}{}
	}
	return nil
}

func toEdges(in []IngredientInput) []models.FoodIngredient {
	if len(in) == 0 {
		return nil
	}
	edges := make([]models.FoodIngredient, 0, len(in))
	for _, ing := range in {
		edges = append(edges, models.FoodIngredient{IngredientID: ing.FoodID, Quantity: ing.Quantity})
	}
	return edges
}

// sameEdges compares two edge sets by (ingredient_id, quantity), ignoring order.
func sameEdges(current []models.FoodIngredient, next []models.FoodIngredient) bool {
	if len(current) != len(next) {
		return false
	}
	want := make(map[uuid.UUID]float64, len(current))
	for _, edge := range current {
		want[edge.IngredientID] = edge.Quantity
	}
	for _, edge := range next {
		qty, ok := want[edge.IngredientID]
		if !ok || qty != edge.Quantity {
			return false
		}
	}
	return true
}

func normalizeBarcode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// IngredientDTO is one level of composition; nested ingredients are not expanded.
type IngredientDTO struct {
	Quantity float64      `json:"quantity"`
	Food     *FoodItemDTO `json:"food"`
}

// FoodItemDTO is the transport shape of a catalog item.
type FoodItemDTO struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"user_id"`
	Private        bool             `json:"private"`
	Hidden         bool             `json:"hidden"`
	Name           string           `json:"name"`
	Brand          string           `json:"brand"`
	Description    *string          `json:"description,omitempty"`
	Barcode        *string          `json:"barcode,omitempty"`
	ServingSize    float64          `json:"serving_size"`
	ServingUnit    string           `json:"serving_unit"`
	CaloriesPer100 float64          `json:"calories_per_100"`
	ProteinPer100  float64          `json:"protein_per_100"`
	CarbsPer100    float64          `json:"carbs_per_100"`
	FatPer100      float64          `json:"fat_per_100"`
	Ingredients    []IngredientDTO  `json:"ingredients"`
	CreatedAt      *time.Time       `json:"created_at,omitempty"`
	Similarity     *float64         `json:"similarity,omitempty"`
	Transient      bool             `json:"transient,omitempty"`
	Source         enums.FoodSource `json:"source,omitempty"`
}

func FromModel(item *models.FoodItem) *FoodItemDTO {
	return fromModel(item, true)
}

func fromModel(item *models.FoodItem, expand bool) *FoodItemDTO {
	if item == nil {
		return nil
	}
	dto := &FoodItemDTO{
		ID:             item.ID,
		UserID:         item.UserID,
		Private:        item.Private,
		Hidden:         item.Hidden,
		Name:           item.Name,
		Brand:          item.Brand,
		Description:    item.Description,
		Barcode:        item.Barcode,
		ServingSize:    item.ServingSize,
		ServingUnit:    item.ServingUnit,
		CaloriesPer100: item.CaloriesPer100,
		ProteinPer100:  item.ProteinPer100,
		CarbsPer100:    item.CarbsPer100,
		FatPer100:      item.FatPer100,
		Ingredients:    []IngredientDTO{},
	}
	if !item.CreatedAt.IsZero() {
		created := item.CreatedAt
		dto.CreatedAt = &created
	}
	if !expand {
		return dto
	}
	for _, edge := range item.Ingredients {
		dto.Ingredients = append(dto.Ingredients, IngredientDTO{
			Quantity: edge.Quantity,
			Food:     fromModel(edge.Ingredient, false),
		})
	}
	sort.SliceStable(dto.Ingredients, func(i, j int) bool {
		a, b := dto.Ingredients[i].Food, dto.Ingredients[j].Food
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.Name < b.Name
	})
	return dto
}

// FromResult renders a search result.
func FromResult(res Result) *FoodItemDTO {
	dto := FromModel(res.Item)
	if dto == nil {
		return nil
	}
	dto.Similarity = res.Similarity
	dto.Transient = res.Transient
	dto.Source = res.Source
	return dto
}

func FromResults(results []Result) []*FoodItemDTO {
	out := make([]*FoodItemDTO, 0, len(results))
	for _, res := range results {
		out = append(out, FromResult(res))
	}
	return out
}

func FromModels(items []models.FoodItem) []*FoodItemDTO {
	out := make([]*FoodItemDTO, 0, len(items))
	for i := range items {
		out = append(out, FromModel(&items[i]))
	}
	return out
}
