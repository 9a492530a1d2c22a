package models

import (
	"time"

	"github.com/google/uuid"
)

// GoalSnapshot is an immutable set of daily targets. The current snapshot of a
// user is the one with the greatest CreatedAt.
type GoalSnapshot struct {
	ID                     uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                 uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:goal_snapshots_user_created_idx,priority:1"`
	CreatedAt              time.Time `gorm:"column:created_at;not null;index:goal_snapshots_user_created_idx,priority:2,sort:desc"`
	DailyCalorieTarget     int       `gorm:"column:daily_calorie_target;not null;default:2000"`
	DailyProteinTarget     int       `gorm:"column:daily_protein_target;not null;default:65"`
	DailyCarbsTarget       int       `gorm:"column:daily_carbs_target;not null;default:250"`
	DailyFatTarget         int       `gorm:"column:daily_fat_target;not null;default:60"`
	DailyCalorieBurnTarget int       `gorm:"column:daily_calorie_burn_target;not null;default:200"`
}
