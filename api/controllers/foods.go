package controllers

import (
	"net/http"

	"github.com/angelmondragon/fork-backend/api/responses"
	"github.com/angelmondragon/fork-backend/api/validators"
	"github.com/angelmondragon/fork-backend/internal/foods"
	"github.com/angelmondragon/fork-backend/pkg/logger"
)

const (
	defaultRecentFoods = 10
	maxRecentFoods     = 100
)

func FoodCreate(svc foods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "food service")
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		var body foods.CreateFoodInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, foods.FromModel(item))
	}
}

func FoodGet(svc foods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "food service")
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), userID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, foods.FromModel(item))
	}
}

func FoodUpdate(svc foods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "food service")
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body foods.UpdateFoodPatch
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), userID, id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, foods.FromModel(item))
	}
}

func FoodDelete(svc foods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "food service")
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// FoodSearch resolves a text or barcode query across the local and external catalogs.
func FoodSearch(resolver foods.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			serviceUnavailable(w, r, logg, "food resolver")
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}

		var body foods.SearchRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := resolver.Search(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, foods.FromResults(results))
	}
}

// FoodRecent lists the distinct items the caller logged most recently.
func FoodRecent(resolver foods.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			serviceUnavailable(w, r, logg, "food resolver")
			return
		}
		userID, ok := requireUser(w, r, logg)
		if !ok {
			return
		}
		n, err := validators.ParseQueryInt(r, "n", defaultRecentFoods, 1, maxRecentFoods)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := resolver.LastLogged(r.Context(), userID, n)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, foods.FromModels(items))
	}
}
