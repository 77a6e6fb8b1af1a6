package implementation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vegan-agent-be/internal/repository/contract"
	"vegan-agent-be/pkg/history"

	"github.com/redis/go-redis/v9"
)

const historyKeyPrefix = "vegan:history:"

type RedisHistoryRepositoryImpl struct {
	rdb  *redis.Client
	size int
	ttl  time.Duration
}

func NewRedisHistoryRepository(rdb *redis.Client, size int, ttl time.Duration) contract.HistoryRepository {
	return &RedisHistoryRepositoryImpl{
		rdb:  rdb,
		size: history.ClampSize(size),
		ttl:  ttl,
	}
}

func historyKey(sessionID string) string {
	return historyKeyPrefix + sessionID
}

// Push prepends the entry and trims the list in one pipeline, so the list
// never holds more than size entries once the call returns.
func (r *RedisHistoryRepositoryImpl) Push(ctx context.Context, sessionID string, entry history.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	key := historyKey(sessionID)
	pipe := r.rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(r.size-1))
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push history: %w", err)
	}
	return nil
}

func (r *RedisHistoryRepositoryImpl) List(ctx context.Context, sessionID string) ([]history.Entry, error) {
	raw, err := r.rdb.LRange(ctx, historyKey(sessionID), 0, int64(r.size-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	entries := make([]history.Entry, 0, len(raw))
	for _, item := range raw {
		var e history.Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			// skip entries written by an incompatible version
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *RedisHistoryRepositoryImpl) Clear(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, historyKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
