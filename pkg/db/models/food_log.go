package models

import (
	"time"

	"github.com/angelmondragon/fork-backend/pkg/enums"
	"github.com/google/uuid"
)

// FoodLog is the nutrition ledger of one user for one calendar day.
type FoodLog struct {
	ID      uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID  uuid.UUID     `gorm:"column:user_id;type:uuid;not null;uniqueIndex:food_logs_user_date_key,priority:1"`
	Date    time.Time     `gorm:"column:date;type:date;not null;uniqueIndex:food_logs_user_date_key,priority:2"`
	GoalsID uuid.UUID     `gorm:"column:goals_id;type:uuid;not null"`
	Notes   string        `gorm:"column:notes;type:text;not null;default:''"`
	Goals   *GoalSnapshot `gorm:"foreignKey:GoalsID"`
	Entries []FoodEntry   `gorm:"foreignKey:LogID;constraint:OnDelete:CASCADE"`
}

// FoodEntry records a quantity (grams) of a food item eaten as part of a meal.
type FoodEntry struct {
	ID       uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LogID    uuid.UUID      `gorm:"column:log_id;type:uuid;not null;index:food_entries_log_id_idx"`
	FoodID   uuid.UUID      `gorm:"column:food_id;type:uuid;not null;index:food_entries_food_id_idx"`
	Quantity float64        `gorm:"column:quantity;not null"`
	MealType enums.MealType `gorm:"column:meal_type;type:text;not null;default:snack"`
	FoodItem *FoodItem      `gorm:"foreignKey:FoodID"`
}
