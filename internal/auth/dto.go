package auth

import (
	"strings"

	"github.com/angelmondragon/fork-backend/internal/goals"
	"github.com/angelmondragon/fork-backend/internal/users"
	"github.com/angelmondragon/fork-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
)

const minPasswordLength = 8

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates an account. Goals default to goals.DefaultTargets
// and Weight, when present, becomes the first weight history point.
type RegisterRequest struct {
	Username      string              `json:"username" validate:"required,min=3,max=64"`
	Email         string              `json:"email" validate:"required,email"`
	Password      string              `json:"password" validate:"required,min=8"`
	Height        *float64            `json:"height" validate:"omitempty,gt=0"`
	Age           *int                `json:"age" validate:"omitempty,gt=0"`
	Gender        enums.Gender        `json:"gender"`
	ActivityLevel enums.ActivityLevel `json:"activity_level"`
	Weight        *float64            `json:"weight" validate:"omitempty,gt=0"`
	Goals         *goals.Targets      `json:"goals"`
}

func (r *RegisterRequest) normalize() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Username == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(r.Password) < minPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if r.Gender == "" {
		r.Gender = enums.GenderMale
	}
	if !r.Gender.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid gender")
	}
	if r.ActivityLevel == "" {
		r.ActivityLevel = enums.ActivityLevelSedentary
	}
	if !r.ActivityLevel.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid activity level")
	}
	if r.Height != nil && *r.Height <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "height must be positive")
	}
	if r.Age != nil && *r.Age <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "age must be positive")
	}
	if r.Weight != nil && *r.Weight <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "weight must be positive")
	}
	if r.Goals != nil {
		return r.Goals.Validate()
	}
	return nil
}

// RefreshRequest carries the refresh token for rotation and logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by register, login and refresh.
type TokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	User         *users.UserDTO `json:"user"`
}
