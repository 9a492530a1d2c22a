package activitylog

import (
	"context"
	"testing"

	"github.com/angelmondragon/fork-backend/internal/activities"
	"github.com/angelmondragon/fork-backend/internal/goals"
	"github.com/angelmondragon/fork-backend/internal/repo/repotest"
	"github.com/angelmondragon/fork-backend/internal/weighthistory"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc      Service
	repo     Repository
	conn     *gorm.DB
	user     *models.User
	goal     *models.GoalSnapshot
	activity *models.Activity
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := repotest.NewDB(t)
	user := repotest.SeedUser(t, conn)
	goal := repotest.SeedGoals(t, conn, user.ID, repotest.Day(2026, 1, 1), 2000)
	activity := &models.Activity{ID: uuid.New(), UserID: user.ID, Name: "Running", CaloriesBurnedPerKgHour: 10}
	require.NoError(t, conn.Create(activity).Error)

	r := NewRepository(conn)
	svc, err := NewService(ServiceParams{
		Repo:       r,
		Goals:      goals.NewRepository(conn),
		Activities: activities.NewRepository(conn),
		Weights:    weighthistory.NewRepository(conn),
	})
	require.NoError(t, err)
	return fixture{svc: svc, repo: r, conn: conn, user: user, goal: goal, activity: activity}
}

func TestAddEntryDerivesCaloriesFromLatestWeight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.conn.Create(&models.WeightHistoryEntry{ID: uuid.New(), UserID: f.user.ID, Weight: 90, CreatedAt: repotest.Day(2026, 1, 1)}).Error)
	require.NoError(t, f.conn.Create(&models.WeightHistoryEntry{ID: uuid.New(), UserID: f.user.ID, Weight: 80, CreatedAt: repotest.Day(2026, 2, 1)}).Error)

	entry, err := f.svc.AddEntry(ctx, f.user.ID, repotest.Day(2026, 3, 1), AddEntryInput{ActivityID: f.activity.ID, Duration: 30})
	require.NoError(t, err)
	require.NotNil(t, entry.CaloriesBurned)
	assert.Equal(t, 400.0, *entry.CaloriesBurned)
	require.NotNil(t, entry.Activity)
	assert.Equal(t, "Running", entry.Activity.Name)
}

func TestAddEntryWithoutWeightLeavesCaloriesEmpty(t *testing.T) {
	f := newFixture(t)
	entry, err := f.svc.AddEntry(context.Background(), f.user.ID, repotest.Day(2026, 3, 1), AddEntryInput{ActivityID: f.activity.ID, Duration: 45})
	require.NoError(t, err)
	assert.Nil(t, entry.CaloriesBurned)
}

func TestAddEntryKeepsExplicitCalories(t *testing.T) {
	f := newFixture(t)
	explicit := 123.0
	entry, err := f.svc.AddEntry(context.Background(), f.user.ID, repotest.Day(2026, 3, 1), AddEntryInput{ActivityID: f.activity.ID, Duration: 45, CaloriesBurned: &explicit})
	require.NoError(t, err)
	require.NotNil(t, entry.CaloriesBurned)
	assert.Equal(t, 123.0, *entry.CaloriesBurned)
}

func TestAddEntryErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := repotest.Day(2026, 3, 1)

	_, err := f.svc.AddEntry(ctx, f.user.ID, day, AddEntryInput{ActivityID: uuid.New(), Duration: 10})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.AddEntry(ctx, f.user.ID, day, AddEntryInput{ActivityID: f.activity.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	stranger := repotest.SeedUser(t, f.conn)
	_, err = f.svc.AddEntry(ctx, stranger.ID, day, AddEntryInput{ActivityID: f.activity.ID, Duration: 10})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNoGoals))
}

func TestUpdateAndRemoveEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := repotest.Day(2026, 3, 1)
	entry, err := f.svc.AddEntry(ctx, f.user.ID, day, AddEntryInput{ActivityID: f.activity.ID, Duration: 20})
	require.NoError(t, err)

	burned := 150.0
	updated, err := f.svc.UpdateEntry(ctx, f.user.ID, day, entry.ID, EntryPatch{CaloriesBurned: &burned})
	require.NoError(t, err)
	assert.Equal(t, 20.0, updated.Duration)
	require.NotNil(t, updated.CaloriesBurned)
	assert.Equal(t, 150.0, *updated.CaloriesBurned)

	err = f.svc.RemoveEntry(ctx, f.user.ID, repotest.Day(2026, 3, 2), entry.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, f.svc.RemoveEntry(ctx, f.user.ID, day, entry.ID))
	err = f.svc.RemoveEntry(ctx, f.user.ID, day, entry.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestLastLogsAndRepoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, d := range []int{2, 9, 4} {
		_, err := f.svc.GetOrCreateLog(ctx, f.user.ID, repotest.Day(2026, 3, d))
		require.NoError(t, err)
	}

	next := repotest.SeedGoals(t, f.conn, f.user.ID, repotest.Day(2026, 3, 10), 2100)
	require.NoError(t, f.repo.RepointLatest(ctx, f.conn, f.user.ID, next.ID))

	logs, err := f.svc.GetLastLogs(ctx, f.user.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, repotest.Day(2026, 3, 9), logs[0].Date.UTC())
	assert.Equal(t, next.ID, logs[0].GoalsID)
	assert.Equal(t, f.goal.ID, logs[1].GoalsID)
	assert.Equal(t, f.goal.ID, logs[2].GoalsID)

	dto := FromModel(&logs[0])
	assert.Equal(t, "2026-03-09", dto.Date)
	assert.Equal(t, 2100, dto.Goals.DailyCalorieTarget)
}

func TestBurnedCalories(t *testing.T) {
	assert.Equal(t, 400.0, BurnedCalories(10, 80, 30))
	assert.Equal(t, 0.0, BurnedCalories(0, 80, 30))
	assert.Equal(t, 116.7, BurnedCalories(7, 100, 10))
}
