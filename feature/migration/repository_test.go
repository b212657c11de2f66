package migration

import (
	"context"
	"errors"
	"testing"
	"time"

	"bulk-manager/core/database"
	"bulk-manager/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	repo := NewRepository(db)
	require.NoError(t, repo.Migrate())
	return repo
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestRepositoryLifecycle(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	log, err := repo.Create(ctx, "run-1", "f-src", "f-dst")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, log.Status)
	assert.NotEmpty(t, log.ID)

	log.Processed, log.Updated, log.Failed = 3, 2, 1
	log.Details = []string{"e3: HTTP 500"}
	require.NoError(t, repo.Update(ctx, log))

	got, err := repo.Get(ctx, log.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Processed)
	assert.Equal(t, 2, got.Updated)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, []string{"e3: HTTP 500"}, got.Details)
	assert.Nil(t, got.CompletedAt)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, "run-1", "a", "b")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := repo.Create(ctx, "run-2", "c", "d")
	require.NoError(t, err)

	logs, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, second.ID, logs[0].ID)
	assert.Equal(t, first.ID, logs[1].ID)

	logs, err = repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestRepositoryErrors(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT .* FROM `migration_logs`").WillReturnError(errors.New("db down"))
	_, err := repo.Get(ctx, "x")
	assert.ErrorContains(t, err, "db down")
	assert.NotErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery("SELECT .* FROM `migration_logs`").WillReturnError(errors.New("db down"))
	_, err = repo.List(ctx, 5)
	assert.ErrorContains(t, err, "failed to list migration logs")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTracker(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	tracker, err := repo.Start(ctx, "run-1", "f-src", "f-dst", zap.NewNop())
	require.NoError(t, err)

	tracker.Observe(ctx, reconcile.Result{Ref: "e1", Action: reconcile.ActionUpdate, Status: reconcile.StatusSuccess})
	tracker.Observe(ctx, reconcile.Result{Ref: "e2", Action: reconcile.ActionSkipHasValue, Status: reconcile.StatusSkipped})
	tracker.Observe(ctx, reconcile.Result{Ref: "e3", Action: reconcile.ActionUpdate, Status: reconcile.StatusFailed, Error: "HTTP 422: bad value"})

	// Counts are persisted while the run is still going.
	mid, err := repo.Get(ctx, tracker.Log().ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, mid.Status)
	assert.Equal(t, 3, mid.Processed)

	tracker.Finish(ctx, reconcile.RunCompleted)

	final, err := repo.Get(ctx, tracker.Log().ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, final.Status)
	assert.Equal(t, 1, final.Updated)
	assert.Equal(t, 1, final.Skipped)
	assert.Equal(t, 1, final.Failed)
	assert.Equal(t, []string{"e3: HTTP 422: bad value"}, final.Details)
	assert.NotNil(t, final.CompletedAt)
}

func TestTrackerAborted(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	tracker, err := repo.Start(ctx, "run-1", "a", "b", nil)
	require.NoError(t, err)
	tracker.Finish(ctx, reconcile.RunAborted)

	final, err := repo.Get(ctx, tracker.Log().ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, final.Status)
	assert.Contains(t, final.Details, "run ended in state aborted")
}

func TestTrackerDetailsCapped(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	tracker, err := repo.Start(ctx, "run-1", "a", "b", nil)
	require.NoError(t, err)
	for i := 0; i < MaxDetails+3; i++ {
		tracker.Observe(ctx, reconcile.Result{Ref: "e", Status: reconcile.StatusFailed, Error: "boom"})
	}
	tracker.Finish(ctx, reconcile.RunAborted)

	final, err := repo.Get(ctx, tracker.Log().ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, final.Status)
	assert.Equal(t, MaxDetails+3, final.Failed)
	assert.Len(t, final.Details, MaxDetails)
	assert.NotContains(t, final.Details, "run ended in state aborted")
}
