package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusforge/timetable-engine/internal/models"
	appErrors "github.com/campusforge/timetable-engine/pkg/errors"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	job := &models.RunJob{ID: "job-1", Status: models.RunJobStatusQueued, CreatedAt: time.Now()}

	require.NoError(t, store.Put(context.Background(), job))

	got, err := store.Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunJobStatusQueued, got.Status)

	// The store hands out copies; mutating one must not leak back.
	got.Status = models.RunJobStatusFailed
	again, err := store.Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunJobStatusQueued, again.Status)
}

func TestMemoryStoreUnknownJob(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestMemoryStoreExpiresSettledJobs(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	current := time.Unix(1700000000, 0)
	store.now = func() time.Time { return current }

	require.NoError(t, store.Put(context.Background(), &models.RunJob{ID: "done", Status: models.RunJobStatusFinished}))

	_, err := store.Get(context.Background(), "done")
	require.NoError(t, err)

	current = current.Add(2 * time.Minute)
	_, err = store.Get(context.Background(), "done")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestMemoryStoreKeepsActiveJobsPastTTL(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	current := time.Unix(1700000000, 0)
	store.now = func() time.Time { return current }

	require.NoError(t, store.Put(context.Background(), &models.RunJob{ID: "busy", Status: models.RunJobStatusProcessing}))

	current = current.Add(time.Hour)
	got, err := store.Get(context.Background(), "busy")
	require.NoError(t, err)
	assert.Equal(t, models.RunJobStatusProcessing, got.Status)
}

func TestMemoryStoreSweepsExpiredOnPut(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	current := time.Unix(1700000000, 0)
	store.now = func() time.Time { return current }

	require.NoError(t, store.Put(context.Background(), &models.RunJob{ID: "old", Status: models.RunJobStatusFinished}))

	current = current.Add(time.Hour)
	require.NoError(t, store.Put(context.Background(), &models.RunJob{ID: "new", Status: models.RunJobStatusQueued}))

	store.mu.RLock()
	_, oldExists := store.jobs["old"]
	size := len(store.jobs)
	store.mu.RUnlock()
	assert.False(t, oldExists)
	assert.Equal(t, 1, size)
}
