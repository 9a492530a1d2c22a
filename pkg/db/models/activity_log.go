package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog is the activity ledger of one user for one calendar day.
type ActivityLog struct {
	ID      uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID  uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:activity_logs_user_date_key,priority:1"`
	Date    time.Time       `gorm:"column:date;type:date;not null;uniqueIndex:activity_logs_user_date_key,priority:2"`
	GoalsID uuid.UUID       `gorm:"column:goals_id;type:uuid;not null"`
	Goals   *GoalSnapshot   `gorm:"foreignKey:GoalsID"`
	Entries []ActivityEntry `gorm:"foreignKey:LogID;constraint:OnDelete:CASCADE"`
}

// ActivityEntry records a performed activity. Duration is in minutes.
type ActivityEntry struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LogID          uuid.UUID `gorm:"column:log_id;type:uuid;not null;index:activity_entries_log_id_idx"`
	ActivityID     uuid.UUID `gorm:"column:activity_id;type:uuid;not null"`
	Duration       float64   `gorm:"column:duration;not null"`
	CaloriesBurned *float64  `gorm:"column:calories_burned"`
	Activity       *Activity `gorm:"foreignKey:ActivityID"`
}
