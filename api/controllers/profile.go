package controllers

import (
	"net/http"

	"github.com/angelmondragon/fork-backend/api/responses"
	"github.com/angelmondragon/fork-backend/api/validators"
	"github.com/angelmondragon/fork-backend/internal/users"
	"github.com/angelmondragon/fork-backend/internal/weighthistory"
	"github.com/angelmondragon/fork-backend/pkg/logger"
)

type weightHistoryRequest struct {
	WeightHistory []weighthistory.EntryInput `json:"weight_history" validate:"dive"`
}

func ProfileGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "profile service")
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		profile, err := svc.GetProfile(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, users.ProfileFromModel(profile))
	}
}

// ProfileUpdate applies a partial profile patch; goals and weight are routed to their own ledgers.
func ProfileUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "profile service")
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		var body users.ProfilePatch
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.UpdateProfile(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, users.ProfileFromModel(profile))
	}
}

// WeightHistoryReplace reconciles the caller's full weight series against storage.
func WeightHistoryReplace(svc weighthistory.Reconciler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "weight history service")
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		var body weightHistoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.Reconcile(r.Context(), userID, body.WeightHistory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, weighthistory.FromModels(entries))
	}
}
