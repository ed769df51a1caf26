package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"findoc-pipeline/internal/domain/document"

	"github.com/redis/go-redis/v9"
)

// blockTimeout bounds each BRPOP so workers notice context cancellation.
const blockTimeout = 2 * time.Second

// RedisSource consumes file events the external inbox watcher LPUSHes onto a
// Redis list, one JSON object per attachment.
type RedisSource struct {
	rdb      *redis.Client
	queueKey string
}

func NewRedisSource(rdb *redis.Client, queueKey string) *RedisSource {
	return &RedisSource{rdb: rdb, queueKey: queueKey}
}

var _ document.Source = (*RedisSource)(nil)

// Next blocks until an event is available or ctx is cancelled.
func (s *RedisSource) Next(ctx context.Context) (document.FileEvent, error) {
	for {
		if err := ctx.Err(); err != nil {
			return document.FileEvent{}, err
		}
		vals, err := s.rdb.BRPop(ctx, blockTimeout, s.queueKey).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return document.FileEvent{}, err
		}
		// BRPop returns [key, value]
		var ev document.FileEvent
		if err := json.Unmarshal([]byte(vals[1]), &ev); err != nil {
			return document.FileEvent{}, fmt.Errorf("malformed file event: %w", err)
		}
		return ev, nil
	}
}

// Requeue puts the event back at the tail so it is retried after the rest of
// the backlog, matching the "next polling cycle" semantics.
func (s *RedisSource) Requeue(ctx context.Context, ev document.FileEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.rdb.LPush(ctx, s.queueKey, payload).Err()
}
