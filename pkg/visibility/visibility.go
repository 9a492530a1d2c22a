package visibility

import (
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/google/uuid"
)

// Scope selects which part of the food catalog a requester may see.
type Scope int

const (
	// ScopeLocal covers public items plus the requester's private items.
	ScopeLocal Scope = iota
	// ScopePersonal covers only the requester's private items.
	ScopePersonal
)

// FoodInScope reports whether item is visible to userID under scope.
func FoodInScope(item *models.FoodItem, userID uuid.UUID, scope Scope) bool {
	if item == nil {
		return false
	}
	owned := item.UserID == userID
	switch scope {
	case ScopePersonal:
		return owned && item.Private
	default:
		return !item.Private || owned
	}
}

// CanAccessFood reports whether userID may read item.
func CanAccessFood(item *models.FoodItem, userID uuid.UUID) bool {
	return FoodInScope(item, userID, ScopeLocal)
}

// EnsureFoodVisible hides items the requester may not read behind NotFound so
// private catalog entries never leak.
func EnsureFoodVisible(item *models.FoodItem, userID uuid.UUID) error {
	if !CanAccessFood(item, userID) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "food item not found")
	}
	return nil
}

// EnsureFoodEditable allows the owner, or anyone when the item is public.
func EnsureFoodEditable(item *models.FoodItem, userID uuid.UUID) error {
	if err := EnsureFoodVisible(item, userID); err != nil {
		return err
	}
	if item.Private && item.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "food item is not editable")
	}
	return nil
}

// EnsureFoodDeletable allows only the owner.
func EnsureFoodDeletable(item *models.FoodItem, userID uuid.UUID) error {
	if err := EnsureFoodVisible(item, userID); err != nil {
		return err
	}
	if item.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can delete a food item")
	}
	return nil
}

// EnsureActivityOwner allows mutations of an activity only by its owner.
func EnsureActivityOwner(activity *models.Activity, userID uuid.UUID) error {
	if activity == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "activity not found")
	}
	if activity.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can modify an activity")
	}
	return nil
}
