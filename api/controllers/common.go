package controllers

import (
	"net/http"

	"github.com/angelmondragon/fork-backend/api/middleware"
	"github.com/angelmondragon/fork-backend/api/responses"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/angelmondragon/fork-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	defaultLastLogs = 7
	maxLastLogs     = 366
)

// requireUser writes a 401 and returns false when the request carries no authenticated user.
func requireUser(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
		return uuid.Nil, false
	}
	return userID, true
}

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" unavailable"))
}
