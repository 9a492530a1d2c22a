package models

import (
	"time"

	"github.com/google/uuid"
)

// WeightHistoryEntry is one point of a user's weight series. CreatedAt is the
// calendar day the measurement belongs to and is set by the client.
type WeightHistoryEntry struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:weight_history_user_id_idx"`
	Weight    float64   `gorm:"column:weight;not null"`
	CreatedAt time.Time `gorm:"column:created_at;type:date;not null;autoCreateTime:false"`
}

func (WeightHistoryEntry) TableName() string {
	return "weight_history"
}
