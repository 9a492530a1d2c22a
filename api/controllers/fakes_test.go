package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/fork-backend/api/middleware"
	"github.com/angelmondragon/fork-backend/internal/activities"
	"github.com/angelmondragon/fork-backend/internal/activitylog"
	"github.com/angelmondragon/fork-backend/internal/auth"
	"github.com/angelmondragon/fork-backend/internal/foodlog"
	"github.com/angelmondragon/fork-backend/internal/foods"
	"github.com/angelmondragon/fork-backend/internal/users"
	"github.com/angelmondragon/fork-backend/internal/weighthistory"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// serve routes a single request through chi so URL params resolve.
func serve(t *testing.T, method, pattern, target, body string, userID uuid.UUID, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != uuid.Nil {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type fakeAuthService struct {
	registerFn func(ctx context.Context, req auth.RegisterRequest) (*auth.TokenResponse, error)
	loginFn    func(ctx context.Context, req auth.LoginRequest) (*auth.TokenResponse, error)
	refreshFn  func(ctx context.Context, token string) (*auth.TokenResponse, error)
	logoutFn   func(ctx context.Context, token string) error
}

func (f fakeAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.TokenResponse, error) {
	return f.registerFn(ctx, req)
}

func (f fakeAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.TokenResponse, error) {
	return f.loginFn(ctx, req)
}

func (f fakeAuthService) Refresh(ctx context.Context, token string) (*auth.TokenResponse, error) {
	return f.refreshFn(ctx, token)
}

func (f fakeAuthService) Logout(ctx context.Context, token string) error {
	return f.logoutFn(ctx, token)
}

type fakeUsersService struct {
	getFn    func(ctx context.Context, userID uuid.UUID) (*users.Profile, error)
	updateFn func(ctx context.Context, userID uuid.UUID, patch users.ProfilePatch) (*users.Profile, error)
}

func (f fakeUsersService) GetProfile(ctx context.Context, userID uuid.UUID) (*users.Profile, error) {
	return f.getFn(ctx, userID)
}

func (f fakeUsersService) UpdateProfile(ctx context.Context, userID uuid.UUID, patch users.ProfilePatch) (*users.Profile, error) {
	return f.updateFn(ctx, userID, patch)
}

type fakeReconciler struct {
	weighthistory.Reconciler
	reconcileFn func(ctx context.Context, userID uuid.UUID, submitted []weighthistory.EntryInput) ([]models.WeightHistoryEntry, error)
}

func (f fakeReconciler) Reconcile(ctx context.Context, userID uuid.UUID, submitted []weighthistory.EntryInput) ([]models.WeightHistoryEntry, error) {
	return f.reconcileFn(ctx, userID, submitted)
}

type fakeFoodService struct {
	createFn func(ctx context.Context, userID uuid.UUID, input foods.CreateFoodInput) (*models.FoodItem, error)
	updateFn func(ctx context.Context, userID, id uuid.UUID, patch foods.UpdateFoodPatch) (*models.FoodItem, error)
	deleteFn func(ctx context.Context, userID, id uuid.UUID) error
	getFn    func(ctx context.Context, userID, id uuid.UUID) (*models.FoodItem, error)
}

func (f fakeFoodService) Create(ctx context.Context, userID uuid.UUID, input foods.CreateFoodInput) (*models.FoodItem, error) {
	return f.createFn(ctx, userID, input)
}

func (f fakeFoodService) Update(ctx context.Context, userID, id uuid.UUID, patch foods.UpdateFoodPatch) (*models.FoodItem, error) {
	return f.updateFn(ctx, userID, id, patch)
}

func (f fakeFoodService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return f.deleteFn(ctx, userID, id)
}

func (f fakeFoodService) Get(ctx context.Context, userID, id uuid.UUID) (*models.FoodItem, error) {
	return f.getFn(ctx, userID, id)
}

type fakeResolver struct {
	searchFn     func(ctx context.Context, userID uuid.UUID, req foods.SearchRequest) ([]foods.Result, error)
	lastLoggedFn func(ctx context.Context, userID uuid.UUID, n int) ([]models.FoodItem, error)
}

func (f fakeResolver) Search(ctx context.Context, userID uuid.UUID, req foods.SearchRequest) ([]foods.Result, error) {
	return f.searchFn(ctx, userID, req)
}

func (f fakeResolver) LastLogged(ctx context.Context, userID uuid.UUID, n int) ([]models.FoodItem, error) {
	return f.lastLoggedFn(ctx, userID, n)
}

type fakeActivityService struct {
	activities.Service
	getFn    func(ctx context.Context, id uuid.UUID) (*models.Activity, error)
	searchFn func(ctx context.Context, userID uuid.UUID, req activities.SearchRequest) ([]models.Activity, error)
}

func (f fakeActivityService) Get(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	return f.getFn(ctx, id)
}

func (f fakeActivityService) Search(ctx context.Context, userID uuid.UUID, req activities.SearchRequest) ([]models.Activity, error) {
	return f.searchFn(ctx, userID, req)
}

type fakeFoodLogService struct {
	foodlog.Service
	getOrCreateFn func(ctx context.Context, userID uuid.UUID, date time.Time) (*models.FoodLog, error)
	lastFn        func(ctx context.Context, userID uuid.UUID, n int) ([]models.FoodLog, error)
	notesFn       func(ctx context.Context, userID uuid.UUID, date time.Time, notes string) (*models.FoodLog, error)
	addFn         func(ctx context.Context, userID uuid.UUID, date time.Time, input foodlog.AddEntryInput) (*models.FoodEntry, error)
	removeFn      func(ctx context.Context, userID uuid.UUID, date time.Time, entryID uuid.UUID) error
}

func (f fakeFoodLogService) GetOrCreateLog(ctx context.Context, userID uuid.UUID, date time.Time) (*models.FoodLog, error) {
	return f.getOrCreateFn(ctx, userID, date)
}

func (f fakeFoodLogService) GetLastLogs(ctx context.Context, userID uuid.UUID, n int) ([]models.FoodLog, error) {
	return f.lastFn(ctx, userID, n)
}

func (f fakeFoodLogService) UpdateNotes(ctx context.Context, userID uuid.UUID, date time.Time, notes string) (*models.FoodLog, error) {
	return f.notesFn(ctx, userID, date, notes)
}

func (f fakeFoodLogService) AddEntry(ctx context.Context, userID uuid.UUID, date time.Time, input foodlog.AddEntryInput) (*models.FoodEntry, error) {
	return f.addFn(ctx, userID, date, input)
}

func (f fakeFoodLogService) RemoveEntry(ctx context.Context, userID uuid.UUID, date time.Time, entryID uuid.UUID) error {
	return f.removeFn(ctx, userID, date, entryID)
}

type fakeActivityLogService struct {
	activitylog.Service
	addFn func(ctx context.Context, userID uuid.UUID, date time.Time, input activitylog.AddEntryInput) (*models.ActivityEntry, error)
}

func (f fakeActivityLogService) AddEntry(ctx context.Context, userID uuid.UUID, date time.Time, input activitylog.AddEntryInput) (*models.ActivityEntry, error) {
	return f.addFn(ctx, userID, date, input)
}
