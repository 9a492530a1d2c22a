package controllers

import (
	"net/http"

	"github.com/angelmondragon/fork-backend/api/responses"
	"github.com/angelmondragon/fork-backend/api/validators"
	"github.com/angelmondragon/fork-backend/internal/activitylog"
	"github.com/angelmondragon/fork-backend/pkg/logger"
)

// ActivityLogGet returns the caller's activity log for a day, creating it against the current goals when missing.
func ActivityLogGet(svc activitylog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "activity log service")
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		date, err := validators.ParseDateParam(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		log, err := svc.GetOrCreateLog(r.Context(), userID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, activitylog.FromModel(log))
	}
}

// ActivityLogList returns the n most recent activity logs; n=0 returns all of them.
func ActivityLogList(svc activitylog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "activity log service")
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		n, err := validators.ParseQueryInt(r, "n", defaultLastLogs, 0, maxLastLogs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logs, err := svc.GetLastLogs(r.Context(), userID, n)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, activitylog.FromModels(logs))
	}
}

func ActivityEntryAdd(svc activitylog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "activity log service")
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		date, err := validators.ParseDateParam(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body activitylog.AddEntryInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.AddEntry(r.Context(), userID, date, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, activitylog.EntryFromModel(entry))
	}
}

func ActivityEntryUpdate(svc activitylog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "activity log service")
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		date, err := validators.ParseDateParam(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entryID, err := validators.ParseUUIDParam(r, "entryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body activitylog.EntryPatch
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.UpdateEntry(r.Context(), userID, date, entryID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, activitylog.EntryFromModel(entry))
	}
}

func ActivityEntryRemove(svc activitylog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "activity log service")
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		date, err := validators.ParseDateParam(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entryID, err := validators.ParseUUIDParam(r, "entryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveEntry(r.Context(), userID, date, entryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
