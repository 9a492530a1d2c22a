package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/fork-backend/api/controllers"
	"github.com/angelmondragon/fork-backend/api/middleware"
	"github.com/angelmondragon/fork-backend/internal/activities"
	"github.com/angelmondragon/fork-backend/internal/activitylog"
	"github.com/angelmondragon/fork-backend/internal/auth"
	"github.com/angelmondragon/fork-backend/internal/foodlog"
	"github.com/angelmondragon/fork-backend/internal/foods"
	"github.com/angelmondragon/fork-backend/internal/users"
	"github.com/angelmondragon/fork-backend/internal/weighthistory"
	"github.com/angelmondragon/fork-backend/pkg/config"
	"github.com/angelmondragon/fork-backend/pkg/logger"
)

// RateLimitStore counts attempts inside a fixed window.
type RateLimitStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Deps is everything the HTTP surface is wired to. Nil services answer 500.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Gatherer prometheus.Gatherer

	DB    controllers.Pinger
	Redis controllers.Pinger

	Sessions  middleware.SessionChecker
	RateLimit RateLimitStore

	Auth          auth.Service
	Users         users.Service
	WeightHistory weighthistory.Reconciler
	Foods         foods.Service
	Resolver      foods.Resolver
	Activities    activities.Service
	FoodLogs      foodlog.Service
	ActivityLogs  activitylog.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, readinessDeps(deps), logg))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimit, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.RateLimit, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/me", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(deps.Users, logg))
			r.Patch("/", controllers.ProfileUpdate(deps.Users, logg))
			r.Put("/weight-history", controllers.WeightHistoryReplace(deps.WeightHistory, logg))
		})

		r.Route("/foods", func(r chi.Router) {
			r.Post("/", controllers.FoodCreate(deps.Foods, logg))
			r.Post("/search", controllers.FoodSearch(deps.Resolver, logg))
			r.Get("/recent", controllers.FoodRecent(deps.Resolver, logg))
			r.Get("/{id}", controllers.FoodGet(deps.Foods, logg))
			r.Patch("/{id}", controllers.FoodUpdate(deps.Foods, logg))
			r.Delete("/{id}", controllers.FoodDelete(deps.Foods, logg))
		})

		r.Route("/activities", func(r chi.Router) {
			r.Post("/", controllers.ActivityCreate(deps.Activities, logg))
			r.Post("/search", controllers.ActivitySearch(deps.Activities, logg))
			r.Get("/{id}", controllers.ActivityGet(deps.Activities, logg))
			r.Patch("/{id}", controllers.ActivityUpdate(deps.Activities, logg))
			r.Delete("/{id}", controllers.ActivityDelete(deps.Activities, logg))
		})

		r.Route("/logs/food", func(r chi.Router) {
			r.Get("/", controllers.FoodLogList(deps.FoodLogs, logg))
			r.Get("/{date}", controllers.FoodLogGet(deps.FoodLogs, logg))
			r.Patch("/{date}", controllers.FoodLogUpdateNotes(deps.FoodLogs, logg))
			r.Post("/{date}/entries", controllers.FoodEntryAdd(deps.FoodLogs, logg))
			r.Patch("/{date}/entries/{entryID}", controllers.FoodEntryUpdate(deps.FoodLogs, logg))
			r.Delete("/{date}/entries/{entryID}", controllers.FoodEntryRemove(deps.FoodLogs, logg))
		})

		r.Route("/logs/activity", func(r chi.Router) {
			r.Get("/", controllers.ActivityLogList(deps.ActivityLogs, logg))
			r.Get("/{date}", controllers.ActivityLogGet(deps.ActivityLogs, logg))
			r.Post("/{date}/entries", controllers.ActivityEntryAdd(deps.ActivityLogs, logg))
			r.Patch("/{date}/entries/{entryID}", controllers.ActivityEntryUpdate(deps.ActivityLogs, logg))
			r.Delete("/{date}/entries/{entryID}", controllers.ActivityEntryRemove(deps.ActivityLogs, logg))
		})
	})

	return r
}

func readinessDeps(deps Deps) map[string]controllers.Pinger {
	out := map[string]controllers.Pinger{}
	if deps.DB != nil {
		out["database"] = deps.DB
	}
	if deps.Redis != nil {
		out["redis"] = deps.Redis
	}
	return out
}
