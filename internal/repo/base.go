package repo

import (
	"context"

	"github.com/angelmondragon/fork-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Conn returns the raw connection, used when re-binding to a transaction.
func (b Base) Conn() *gorm.DB {
	return b.db
}

// Dialect reports the active gorm dialector name ("postgres", "sqlite").
func (b Base) Dialect() string {
	if b.db == nil || b.db.Dialector == nil {
		return ""
	}
	return b.db.Dialector.Name()
}

// EnsureID assigns a fresh UUID when id is unset. Rows are always keyed by the
// application so inserts behave the same on every dialect.
func EnsureID(id *uuid.UUID) {
	if id != nil && *id == uuid.Nil {
		*id = uuid.New()
	}
}

// MapError translates persistence failures into typed errors: missing rows
// become NotFound, unique and foreign key violations Conflict and everything
// else Dependency.
func MapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	switch {
	case db.IsNotFound(err):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, entity+" not found")
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, entity+" already exists")
	case db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, entity+" is still referenced")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist "+entity)
	}
}
