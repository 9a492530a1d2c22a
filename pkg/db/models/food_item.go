package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// FoodItem is a catalog entry. Nutrition values are per 100 serving units.
type FoodItem struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index:food_items_user_id_idx"`
	Private        bool             `gorm:"column:private;not null;default:false"`
	Hidden         bool             `gorm:"column:hidden;not null;default:false"`
	Name           string           `gorm:"column:name;type:varchar(255);not null"`
	Brand          string           `gorm:"column:brand;type:varchar(255);not null;default:'Generic'"`
	Description    *string          `gorm:"column:description;type:varchar(1000)"`
	Barcode        *string          `gorm:"column:barcode;type:varchar(50);uniqueIndex:food_items_barcode_key"`
	ServingSize    float64          `gorm:"column:serving_size;not null"`
	ServingUnit    string           `gorm:"column:serving_unit;type:varchar(20);not null"`
	CaloriesPer100 float64          `gorm:"column:calories_per_100;not null"`
	ProteinPer100  float64          `gorm:"column:protein_per_100;not null"`
	CarbsPer100    float64          `gorm:"column:carbs_per_100;not null"`
	FatPer100      float64          `gorm:"column:fat_per_100;not null"`
	Embedding      *pgvector.Vector `gorm:"column:embedding;type:vector(384)"`
	Ingredients    []FoodIngredient `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// FoodIngredient is a composition edge: Quantity of Ingredient inside Parent.
type FoodIngredient struct {
	ParentID     uuid.UUID `gorm:"column:parent_id;type:uuid;primaryKey"`
	IngredientID uuid.UUID `gorm:"column:ingredient_id;type:uuid;primaryKey"`
	Quantity     float64   `gorm:"column:quantity;not null"`
	Ingredient   *FoodItem `gorm:"foreignKey:IngredientID"`
}

// ScoredFoodItem is a FoodItem annotated with its cosine similarity to a query.
type ScoredFoodItem struct {
	FoodItem
	Similarity float64 `gorm:"column:similarity"`
}
