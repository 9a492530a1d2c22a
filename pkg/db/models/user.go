package models

import (
	"time"

	"github.com/angelmondragon/fork-backend/pkg/enums"
	"github.com/google/uuid"
)

// User represents the canonical identity entity.
type User struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username      string              `gorm:"column:username;type:text;not null;uniqueIndex:users_username_key"`
	Email         string              `gorm:"column:email;type:text;not null;uniqueIndex:users_email_key"`
	PasswordHash  string              `gorm:"column:password_hash;not null"`
	Height        float64             `gorm:"column:height;not null;default:180"`
	Age           int                 `gorm:"column:age;not null;default:18"`
	Gender        enums.Gender        `gorm:"column:gender;type:text;not null;default:male"`
	ActivityLevel enums.ActivityLevel `gorm:"column:activity_level;type:text;not null;default:sedentary"`
	LastLoginAt   *time.Time          `gorm:"column:last_login_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
