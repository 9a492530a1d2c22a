package activities

import (
	"context"
	"testing"

	"github.com/angelmondragon/fork-backend/internal/repo/repotest"
	"github.com/angelmondragon/fork-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fork-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, uuid.UUID, uuid.UUID) {
	t.Helper()
	conn := repotest.NewDB(t)
	owner := repotest.SeedUser(t, conn)
	other := repotest.SeedUser(t, conn)
	svc, err := NewService(NewRepository(conn), nil)
	require.NoError(t, err)
	return svc, owner.ID, other.ID
}

func TestCreateAndGet(t *testing.T) {
	svc, owner, other := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, CreateActivityInput{Name: " Running ", CaloriesBurnedPerKgHour: 9.8})
	require.NoError(t, err)
	assert.Equal(t, "Running", created.Name)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, owner, got.UserID)

	_, err = svc.Create(ctx, other, CreateActivityInput{Name: ""})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Get(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestOwnerOnlyMutations(t *testing.T) {
	svc, owner, other := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, owner, CreateActivityInput{Name: "Cycling", CaloriesBurnedPerKgHour: 7.5})
	require.NoError(t, err)

	name := "Road cycling"
	_, err = svc.Update(ctx, other, created.ID, UpdateActivityPatch{Name: &name})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	updated, err := svc.Update(ctx, owner, created.ID, UpdateActivityPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Road cycling", updated.Name)
	assert.Equal(t, 7.5, updated.CaloriesBurnedPerKgHour)

	require.True(t, pkgerrors.IsCode(svc.Delete(ctx, other, created.ID), pkgerrors.CodeForbidden))
	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteLoggedActivityConflicts(t *testing.T) {
	conn := repotest.NewDB(t)
	owner := repotest.SeedUser(t, conn)
	athlete := repotest.SeedUser(t, conn)
	goals := repotest.SeedGoals(t, conn, athlete.ID, repotest.Day(2026, 1, 1), 2000)
	svc, err := NewService(NewRepository(conn), nil)
	require.NoError(t, err)
	ctx := context.Background()

	rowing, err := svc.Create(ctx, owner.ID, CreateActivityInput{Name: "Rowing", CaloriesBurnedPerKgHour: 7})
	require.NoError(t, err)
	log := models.ActivityLog{ID: uuid.New(), UserID: athlete.ID, Date: repotest.Day(2026, 3, 2), GoalsID: goals.ID}
	require.NoError(t, conn.Omit("Goals", "Entries").Create(&log).Error)
	entry := models.ActivityEntry{ID: uuid.New(), LogID: log.ID, ActivityID: rowing.ID, Duration: 30}
	require.NoError(t, conn.Omit("Activity").Create(&entry).Error)

	err = svc.Delete(ctx, owner.ID, rowing.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	var entries int64
	require.NoError(t, conn.Model(&models.ActivityEntry{}).Where("activity_id = ?", rowing.ID).Count(&entries).Error)
	assert.Equal(t, int64(1), entries)
}

func TestSearch(t *testing.T) {
	svc, owner, other := newTestService(t)
	ctx := context.Background()
	for _, name := range []string{"Running", "Trail running", "Swimming"} {
		_, err := svc.Create(ctx, other, CreateActivityInput{Name: name, CaloriesBurnedPerKgHour: 8})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, owner, CreateActivityInput{Name: "Rowing", CaloriesBurnedPerKgHour: 6})
	require.NoError(t, err)

	hits, err := svc.Search(ctx, owner, SearchRequest{Query: "RUN"})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Running", hits[0].Name)
	assert.Equal(t, "Trail running", hits[1].Name)

	limited, err := svc.Search(ctx, owner, SearchRequest{Query: "ing", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	own, err := svc.Search(ctx, owner, SearchRequest{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "Rowing", own[0].Name)

	none, err := svc.Search(ctx, owner, SearchRequest{Query: "100%"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
