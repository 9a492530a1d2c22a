package users

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/fork-backend/internal/goals"
	"github.com/angelmondragon/fork-backend/internal/repo/repotest"
	"github.com/angelmondragon/fork-backend/internal/weighthistory"
	"github.com/angelmondragon/fork-backend/pkg/db"
	"github.com/angelmondragon/fork-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, now time.Time) (Service, *gorm.DB) {
	t.Helper()
	conn := repotest.NewDB(t)
	client := db.NewFromGorm(conn)
	clock := func() time.Time { return now }

	goalSvc, err := goals.NewService(goals.ServiceParams{Repo: goals.NewRepository(conn), Tx: client, Now: clock})
	require.NoError(t, err)
	weights, err := weighthistory.NewReconciler(weighthistory.NewRepository(conn), client, nil)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repo:    NewRepository(conn),
		Goals:   goalSvc,
		Weights: weights,
		Now:     clock,
	})
	require.NoError(t, err)
	return svc, conn
}

func TestGetProfile(t *testing.T) {
	svc, conn := newTestService(t, time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()
	user := repotest.SeedUser(t, conn)

	profile, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, profile.User.Username)
	assert.Nil(t, profile.Goals)
	assert.Empty(t, profile.WeightHistory)

	repotest.SeedGoals(t, conn, user.ID, repotest.Day(2026, 1, 1), 1800)
	profile, err = svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.Goals)
	assert.Equal(t, 1800, profile.Goals.DailyCalorieTarget)

	_, err = svc.GetProfile(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateProfileRoutesFields(t *testing.T) {
	now := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	svc, conn := newTestService(t, now)
	ctx := context.Background()
	user := repotest.SeedUser(t, conn)
	repotest.SeedGoals(t, conn, user.ID, repotest.Day(2026, 1, 1), 2000)

	height := 172.5
	level := enums.ActivityLevelVeryActive
	weight := 71.2
	targets := goals.DefaultTargets()
	targets.DailyCalorieTarget = 2400

	profile, err := svc.UpdateProfile(ctx, user.ID, ProfilePatch{
		Height:        &height,
		ActivityLevel: &level,
		Weight:        &weight,
		Goals:         &targets,
	})
	require.NoError(t, err)
	assert.Equal(t, 172.5, profile.User.Height)
	assert.Equal(t, enums.ActivityLevelVeryActive, profile.User.ActivityLevel)
	require.NotNil(t, profile.Goals)
	assert.Equal(t, 2400, profile.Goals.DailyCalorieTarget)
	require.Len(t, profile.WeightHistory, 1)
	assert.Equal(t, 71.2, profile.WeightHistory[0].Weight)
	assert.Equal(t, repotest.Day(2026, 4, 2), profile.WeightHistory[0].CreatedAt.UTC())

	weight = 70.8
	profile, err = svc.UpdateProfile(ctx, user.ID, ProfilePatch{Weight: &weight})
	require.NoError(t, err)
	require.Len(t, profile.WeightHistory, 1)
	assert.Equal(t, 70.8, profile.WeightHistory[0].Weight)
}

func TestUpdateProfileRecordsWeightOnGivenDate(t *testing.T) {
	svc, conn := newTestService(t, time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()
	user := repotest.SeedUser(t, conn)

	weight := 69.4
	day := "2026-03-28"
	profile, err := svc.UpdateProfile(ctx, user.ID, ProfilePatch{Weight: &weight, WeightDate: &day})
	require.NoError(t, err)
	require.Len(t, profile.WeightHistory, 1)
	assert.Equal(t, repotest.Day(2026, 3, 28), profile.WeightHistory[0].CreatedAt.UTC())

	weight = 70.1
	profile, err = svc.UpdateProfile(ctx, user.ID, ProfilePatch{Weight: &weight})
	require.NoError(t, err)
	require.Len(t, profile.WeightHistory, 2)
	assert.Equal(t, repotest.Day(2026, 4, 2), profile.WeightHistory[0].CreatedAt.UTC())

	bad := "28/03/2026"
	_, err = svc.UpdateProfile(ctx, user.ID, ProfilePatch{Weight: &weight, WeightDate: &bad})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.UpdateProfile(ctx, user.ID, ProfilePatch{WeightDate: &day})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateProfileValidationAndConflict(t *testing.T) {
	svc, conn := newTestService(t, time.Now())
	ctx := context.Background()
	user := repotest.SeedUser(t, conn)
	other := repotest.SeedUser(t, conn)

	bad := -1
	_, err := svc.UpdateProfile(ctx, user.ID, ProfilePatch{Age: &bad})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	gender := enums.Gender("unknown")
	_, err = svc.UpdateProfile(ctx, user.ID, ProfilePatch{Gender: &gender})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	taken := other.Username
	_, err = svc.UpdateProfile(ctx, user.ID, ProfilePatch{Username: &taken})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}
