package activities

import (
	"strings"

	"github.com/angelmondragon/fork-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/google/uuid"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

type CreateActivityInput struct {
	Name                    string  `json:"name" validate:"required,max=255"`
	CaloriesBurnedPerKgHour float64 `json:"calories_burned_kg_h" validate:"gte=0"`
}

func (in CreateActivityInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if in.CaloriesBurnedPerKgHour < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "calories_burned_kg_h must be non-negative")
	}
	return nil
}

// UpdateActivityPatch carries optional changes; nil fields are left untouched.
type UpdateActivityPatch struct {
	Name                    *string  `json:"name" validate:"omitempty,max=255"`
	CaloriesBurnedPerKgHour *float64 `json:"calories_burned_kg_h" validate:"omitempty,gte=0"`
}

func (p UpdateActivityPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
	}
	if p.CaloriesBurnedPerKgHour != nil && *p.CaloriesBurnedPerKgHour < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "calories_burned_kg_h must be non-negative")
	}
	return nil
}

func (p UpdateActivityPatch) Apply(activity *models.Activity) {
	if p.Name != nil {
		activity.Name = strings.TrimSpace(*p.Name)
	}
	if p.CaloriesBurnedPerKgHour != nil {
		activity.CaloriesBurnedPerKgHour = *p.CaloriesBurnedPerKgHour
	}
}

type SearchRequest struct {
	Query string `json:"query" validate:"omitempty,max=255"`
	Limit int    `json:"limit" validate:"omitempty,gte=0"`
}

type ActivityDTO struct {
	ID                      uuid.UUID `json:"id"`
	UserID                  uuid.UUID `json:"user_id"`
	Name                    string    `json:"name"`
	CaloriesBurnedPerKgHour float64   `json:"calories_burned_kg_h"`
}

func FromModel(activity *models.Activity) *ActivityDTO {
	if activity == nil {
		return nil
	}
	return &ActivityDTO{
		ID:                      activity.ID,
		UserID:                  activity.UserID,
		Name:                    activity.Name,
		CaloriesBurnedPerKgHour: activity.CaloriesBurnedPerKgHour,
	}
}

func FromModels(list []models.Activity) []*ActivityDTO {
	out := make([]*ActivityDTO, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}
