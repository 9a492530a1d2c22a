package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/fork-backend/api/routes"
	"github.com/angelmondragon/fork-backend/internal/activities"
	"github.com/angelmondragon/fork-backend/internal/activitylog"
	"github.com/angelmondragon/fork-backend/internal/auth"
	"github.com/angelmondragon/fork-backend/internal/foodlog"
	"github.com/angelmondragon/fork-backend/internal/foods"
	"github.com/angelmondragon/fork-backend/internal/goals"
	"github.com/angelmondragon/fork-backend/internal/users"
	"github.com/angelmondragon/fork-backend/internal/weighthistory"
	"github.com/angelmondragon/fork-backend/pkg/auth/session"
	"github.com/angelmondragon/fork-backend/pkg/config"
	"github.com/angelmondragon/fork-backend/pkg/db"
	"github.com/angelmondragon/fork-backend/pkg/embeddings"
	"github.com/angelmondragon/fork-backend/pkg/instance"
	"github.com/angelmondragon/fork-backend/pkg/logger"
	"github.com/angelmondragon/fork-backend/pkg/metrics"
	"github.com/angelmondragon/fork-backend/pkg/migrate"
	"github.com/angelmondragon/fork-backend/pkg/openfoodfacts"
	"github.com/angelmondragon/fork-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	provider, err := embeddings.NewFromConfig(cfg.Embeddings)
	if err != nil {
		logg.Error(context.Background(), "failed to create embedding provider", err)
		os.Exit(1)
	}
	embedder := embeddings.NewPool(provider, cfg.Embeddings.Workers)

	offClient := openfoodfacts.NewClient(
		openfoodfacts.WithBaseURL(cfg.OpenFoodFacts.BaseURL),
		openfoodfacts.WithUserAgent(cfg.OpenFoodFacts.UserAgent),
		openfoodfacts.WithCountry(cfg.OpenFoodFacts.Country),
		openfoodfacts.WithTimeout(cfg.OpenFoodFacts.Timeout),
	)

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	goalsRepo := goals.NewRepository(conn)
	weightRepo := weighthistory.NewRepository(conn)
	foodRepo := foods.NewRepository(conn)
	activityRepo := activities.NewRepository(conn)
	foodLogRepo := foodlog.NewRepository(conn)
	activityLogRepo := activitylog.NewRepository(conn)

	goalsService, err := goals.NewService(goals.ServiceParams{
		Repo:       goalsRepo,
		Tx:         dbClient,
		Repointers: []goals.LatestLogRepointer{foodLogRepo, activityLogRepo},
		Logger:     logg,
	})
	exitOnErr(logg, "goals service", err)

	weightService, err := weighthistory.NewReconciler(weightRepo, dbClient, logg)
	exitOnErr(logg, "weight history service", err)

	userService, err := users.NewService(users.ServiceParams{
		Repo:    userRepo,
		Goals:   goalsService,
		Weights: weightService,
		Logger:  logg,
	})
	exitOnErr(logg, "users service", err)

	authService, err := auth.NewService(auth.ServiceParams{
		Users:          userRepo,
		Goals:          goalsRepo,
		Weights:        weightRepo,
		Tx:             dbClient,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	exitOnErr(logg, "auth service", err)

	foodService, err := foods.NewService(foods.ServiceParams{
		Repo:     foodRepo,
		Tx:       dbClient,
		Embedder: embedder,
		Logger:   logg,
	})
	exitOnErr(logg, "food service", err)

	resolver, err := foods.NewResolver(foods.ResolverParams{
		Catalog:       foodRepo,
		External:      offClient,
		Embedder:      embedder,
		Metrics:       metrics.NewResolutionMetrics(registry),
		Logger:        logg,
		DefaultLimit:  cfg.Search.DefaultLimit,
		MinSimilarity: &cfg.Search.MinSimilarity,
	})
	exitOnErr(logg, "food resolver", err)

	activityService, err := activities.NewService(activityRepo, logg)
	exitOnErr(logg, "activity service", err)

	foodLogService, err := foodlog.NewService(foodlog.ServiceParams{
		Repo:   foodLogRepo,
		Goals:  goalsService,
		Foods:  foodRepo,
		Logger: logg,
	})
	exitOnErr(logg, "food log service", err)

	activityLogService, err := activitylog.NewService(activitylog.ServiceParams{
		Repo:       activityLogRepo,
		Goals:      goalsService,
		Activities: activityRepo,
		Weights:    weightService,
		Logger:     logg,
	})
	exitOnErr(logg, "activity log service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			Gatherer:      registry,
			DB:            dbClient,
			Redis:         redisClient,
			Sessions:      sessionManager,
			RateLimit:     redisClient,
			Auth:          authService,
			Users:         userService,
			WeightHistory: weightService,
			Foods:         foodService,
			Resolver:      resolver,
			Activities:    activityService,
			FoodLogs:      foodLogService,
			ActivityLogs:  activityLogService,
		}),
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func exitOnErr(logg *logger.Logger, component string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+component, err)
	os.Exit(1)
}
