package controllers

import (
	"net/http"

	"github.com/angelmondragon/fork-backend/api/responses"
	"github.com/angelmondragon/fork-backend/api/validators"
	"github.com/angelmondragon/fork-backend/internal/foodlog"
	"github.com/angelmondragon/fork-backend/pkg/logger"
)

// FoodLogGet returns the caller's food log for a day, creating it against the current goals when missing.
func FoodLogGet(svc foodlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "food log service")
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
		responses.WriteSuccess(w, foodlog.FromModel(log))
	}
}

// FoodLogList returns the n most recent food logs; n=0 returns all of them.
func FoodLogList(svc foodlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "food log service")
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
		responses.WriteSuccess(w, foodlog.FromModels(logs))
	}
}

func FoodLogUpdateNotes(svc foodlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "food log service")
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

		var body foodlog.UpdateNotesInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		log, err := svc.UpdateNotes(r.Context(), userID, date, body.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, foodlog.FromModel(log))
	}
}

func FoodEntryAdd(svc foodlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "food log service")
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

		var body foodlog.AddEntryInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.AddEntry(r.Context(), userID, date, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, foodlog.EntryFromModel(entry))
	}
}

func FoodEntryUpdate(svc foodlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "food log service")
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

		var body foodlog.EntryPatch
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.UpdateEntry(r.Context(), userID, date, entryID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, foodlog.EntryFromModel(entry))
	}
}

func FoodEntryRemove(svc foodlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "food log service")
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
