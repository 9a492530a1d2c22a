// Package repotest opens throwaway sqlite databases carrying the service schema.
package repotest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/fork-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  height REAL NOT NULL DEFAULT 180,
  age INTEGER NOT NULL DEFAULT 18,
  gender TEXT NOT NULL DEFAULT 'male',
  activity_level TEXT NOT NULL DEFAULT 'sedentary',
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS goal_snapshots (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  created_at DATETIME NOT NULL,
  daily_calorie_target INTEGER NOT NULL,
  daily_protein_target INTEGER NOT NULL,
  daily_carbs_target INTEGER NOT NULL,
  daily_fat_target INTEGER NOT NULL,
  daily_calorie_burn_target INTEGER NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS food_items (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  private INTEGER NOT NULL DEFAULT 0,
  hidden INTEGER NOT NULL DEFAULT 0,
  name TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT 'Generic',
  description TEXT,
  barcode TEXT UNIQUE,
  serving_size REAL NOT NULL,
  serving_unit TEXT NOT NULL,
  calories_per_100 REAL NOT NULL,
  protein_per_100 REAL NOT NULL,
  carbs_per_100 REAL NOT NULL,
  fat_per_100 REAL NOT NULL,
  embedding TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS food_ingredients (
  parent_id TEXT NOT NULL,
  ingredient_id TEXT NOT NULL,
  quantity REAL NOT NULL,
  PRIMARY KEY (parent_id, ingredient_id)
);`,
	`CREATE TABLE IF NOT EXISTS activities (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  calories_burned_per_kg_hour REAL NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS food_logs (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  date DATE NOT NULL,
  goals_id TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  UNIQUE (user_id, date)
);`,
	`CREATE TABLE IF NOT EXISTS food_entries (
  id TEXT PRIMARY KEY,
  log_id TEXT NOT NULL,
  food_id TEXT NOT NULL,
  quantity REAL NOT NULL,
  meal_type TEXT NOT NULL DEFAULT 'snack'
);`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  date DATE NOT NULL,
  goals_id TEXT NOT NULL,
  UNIQUE (user_id, date)
);`,
	`CREATE TABLE IF NOT EXISTS activity_entries (
  id TEXT PRIMARY KEY,
  log_id TEXT NOT NULL,
  activity_id TEXT NOT NULL,
  duration REAL NOT NULL,
  calories_burned REAL
);`,
	`CREATE TABLE IF NOT EXISTS weight_history (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  weight REAL NOT NULL,
  created_at DATE NOT NULL
);`,
}

// NewDB opens an isolated in-memory sqlite database named after the test and
// creates every table. A single connection keeps the database alive.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

// Day returns the UTC midnight for the given calendar date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// SeedUser inserts a user with a unique username and email.
func SeedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	id := uuid.New()
	user := &models.User{
		ID:            id,
		Username:      "user-" + id.String()[:8],
		Email:         id.String()[:8] + "@fork.test",
		PasswordHash:  "hash",
		Height:        180,
		Age:           30,
		Gender:        "male",
		ActivityLevel: "sedentary",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// SeedGoals inserts a goal snapshot for userID created at the given instant.
func SeedGoals(t *testing.T, db *gorm.DB, userID uuid.UUID, createdAt time.Time, calories int) *models.GoalSnapshot {
	t.Helper()
	snap := &models.GoalSnapshot{
		ID:                     uuid.New(),
		UserID:                 userID,
		CreatedAt:              createdAt.UTC(),
		DailyCalorieTarget:     calories,
		DailyProteinTarget:     65,
		DailyCarbsTarget:       250,
		DailyFatTarget:         60,
		DailyCalorieBurnTarget: 200,
	}
	require.NoError(t, db.Create(snap).Error)
	return snap
}

// SeedFood inserts a public food item owned by userID.
func SeedFood(t *testing.T, db *gorm.DB, userID uuid.UUID, name string, mutate ...func(*models.FoodItem)) *models.FoodItem {
	t.Helper()
	item := &models.FoodItem{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           name,
		Brand:          "Generic",
		ServingSize:    100,
		ServingUnit:    "g",
		CaloriesPer100: 100,
		ProteinPer100:  10,
		CarbsPer100:    10,
		FatPer100:      1,
	}
	for _, fn := range mutate {
		fn(item)
	}
	require.NoError(t, db.Omit("Ingredients").Create(item).Error)
	return item
}
