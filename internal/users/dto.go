package users

import (
	"strings"
	"time"

	"github.com/angelmondragon/fork-backend/internal/goals"
	"github.com/angelmondragon/fork-backend/internal/ledger"
	"github.com/angelmondragon/fork-backend/internal/weighthistory"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/angelmondragon/fork-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/google/uuid"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID            uuid.UUID           `json:"id"`
	Username      string              `json:"username"`
	Email         string              `json:"email"`
	Height        float64             `json:"height"`
	Age           int                 `json:"age"`
	Gender        enums.Gender        `json:"gender"`
	ActivityLevel enums.ActivityLevel `json:"activity_level"`
	LastLoginAt   *time.Time          `json:"last_login_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Height:        u.Height,
		Age:           u.Age,
		Gender:        u.Gender,
		ActivityLevel: u.ActivityLevel,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// Profile bundles a user with the goals and weight series that describe them.
type Profile struct {
	User          *models.User
	Goals         *models.GoalSnapshot
	WeightHistory []models.WeightHistoryEntry
}

type ProfileDTO struct {
	User          *UserDTO                 `json:"user"`
	Goals         *goals.SnapshotDTO       `json:"goals"`
	WeightHistory []weighthistory.EntryDTO `json:"weight_history"`
}

func ProfileFromModel(p *Profile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		User:          FromModel(p.User),
		Goals:         goals.FromModel(p.Goals),
		WeightHistory: weighthistory.FromModels(p.WeightHistory),
	}
}

// ProfilePatch changes a profile. Goals and Weight are routed to their own
// services; the remaining fields land on the user row. WeightDate (YYYY-MM-DD)
// records Weight on that day instead of today.
type ProfilePatch struct {
	Username      *string              `json:"username" validate:"omitempty,min=3,max=64"`
	Height        *float64             `json:"height" validate:"omitempty,gt=0"`
	Age           *int                 `json:"age" validate:"omitempty,gt=0"`
	Gender        *enums.Gender        `json:"gender"`
	ActivityLevel *enums.ActivityLevel `json:"activity_level"`
	Weight        *float64             `json:"weight" validate:"omitempty,gt=0"`
	WeightDate    *string              `json:"weight_date"`
	Goals         *goals.Targets       `json:"goals"`
}

func (p ProfilePatch) Validate() error {
	if p.Username != nil && strings.TrimSpace(*p.Username) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "username must not be empty")
	}
	if p.Height != nil && *p.Height <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "height must be positive")
	}
	if p.Age != nil && *p.Age <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "age must be positive")
	}
	if p.Gender != nil && !p.Gender.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid gender")
	}
	if p.ActivityLevel != nil && !p.ActivityLevel.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid activity level")
	}
	if p.Weight != nil && *p.Weight <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "weight must be positive")
	}
	if p.WeightDate != nil {
		if p.Weight == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "weight_date requires weight")
		}
		if _, err := ledger.ParseDay(*p.WeightDate); err != nil {
			return err
		}
	}
	if p.Goals != nil {
		return p.Goals.Validate()
	}
	return nil
}

// weightDay is the day a patched weight is recorded on.
func (p ProfilePatch) weightDay(now time.Time) time.Time {
	if p.WeightDate != nil {
		if day, err := ledger.ParseDay(*p.WeightDate); err == nil {
			return day
		}
	}
	return ledger.Day(now)
}

// columns returns the user-row changes of the patch.
func (p ProfilePatch) columns() map[string]any {
	fields := map[string]any{}
	if p.Username != nil {
		fields["username"] = strings.TrimSpace(*p.Username)
	}
	if p.Height != nil {
		fields["height"] = *p.Height
	}
	if p.Age != nil {
		fields["age"] = *p.Age
	}
	if p.Gender != nil {
		fields["gender"] = *p.Gender
	}
	if p.ActivityLevel != nil {
		fields["activity_level"] = *p.ActivityLevel
	}
	return fields
}
