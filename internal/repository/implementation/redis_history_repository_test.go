package implementation

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"vegan-agent-be/pkg/history"
	"vegan-agent-be/pkg/verdict"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Skipping integration test: redis unreachable: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisHistoryBound(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	repo := NewRedisHistoryRepository(rdb, 3, time.Minute)
	sid := uuid.NewString()
	t.Cleanup(func() { _ = repo.Clear(ctx, sid) })

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Push(ctx, sid, history.Entry{
			Summary:   fmt.Sprintf("scan %d", i),
			Kind:      verdict.KindCaution,
			Style:     verdict.StyleWarning,
			Mode:      history.ModeScan,
			ScannedAt: time.Now().UTC(),
		}))
	}

	n, err := rdb.LLen(ctx, historyKey(sid)).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	got, err := repo.List(ctx, sid)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "scan 5", got[0].Summary)
	assert.Equal(t, verdict.KindCaution, got[0].Kind)
	assert.Equal(t, "scan 3", got[2].Summary)

	ttl, err := rdb.TTL(ctx, historyKey(sid)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, repo.Clear(ctx, sid))
	got, err = repo.List(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, got)
}
