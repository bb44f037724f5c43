package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Bt1QDL/model"
)

func newTestCache(t *testing.T) *SessionCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionCache(client)
}

func TestSessionSnapshotRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	session := &model.AcquisitionSession{
		ID:          "abc-123",
		SourceURL:   "https://www.youtube.com/watch?v=abc12345678",
		Status:      model.StatusDownloading,
		Stage:       "downloading",
		Progress:    42,
		LastMessage: "Attempt 3: TV Client",
	}
	require.NoError(t, c.SaveSnapshot(ctx, session))

	got, err := c.GetSnapshot(ctx, "abc-123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.Status, got.Status)
	assert.Equal(t, 42, got.Progress)
	assert.Equal(t, "Attempt 3: TV Client", got.LastMessage)
}

func TestSessionSnapshotUnknown(t *testing.T) {
	c := newTestCache(t)
	got, err := c.GetSnapshot(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionSnapshotOverwrite(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	session := &model.AcquisitionSession{ID: "s1", Status: model.StatusAnalyzing, Progress: 5}
	require.NoError(t, c.SaveSnapshot(ctx, session))

	session.Status = model.StatusComplete
	session.Progress = 100
	require.NoError(t, c.SaveSnapshot(ctx, session))

	got, err := c.GetSnapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusComplete, got.Status)
	assert.Equal(t, 100, got.Progress)
}

func TestSessionSnapshotDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SaveSnapshot(ctx, &model.AcquisitionSession{ID: "s1"}))
	require.NoError(t, c.Delete(ctx, "s1"))

	got, err := c.GetSnapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
