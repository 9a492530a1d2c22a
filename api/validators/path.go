package validators

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/fork-backend/internal/ledger"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ParseUUIDParam reads a chi URL parameter as a uuid.
func ParseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter is required").WithDetails(map[string]any{"field": key})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a uuid").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// ParseDateParam reads a YYYY-MM-DD chi URL parameter as a ledger day.
func ParseDateParam(r *http.Request, key string) (time.Time, error) {
	return ledger.ParseDay(chi.URLParam(r, key))
}
