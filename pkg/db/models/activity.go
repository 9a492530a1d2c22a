package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a reference entry describing energy expenditure of an exercise.
type Activity struct {
	ID                      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                  uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	Name                    string    `gorm:"column:name;type:varchar(255);not null;index:activities_name_idx"`
	CaloriesBurnedPerKgHour float64   `gorm:"column:calories_burned_per_kg_hour;not null"`
	CreatedAt               time.Time `gorm:"column:created_at;autoCreateTime"`
}
