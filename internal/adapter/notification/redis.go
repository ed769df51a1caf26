package notification

import (
	"context"
	"encoding/json"

	"findoc-pipeline/internal/domain/notify"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier fans pipeline events out to the external dispatcher: PUBLISH
// for real-time push subscribers and LPUSH onto a queue drained by the email
// sender. At-least-once; receivers must tolerate duplicates.
type RedisNotifier struct {
	rdb      *redis.Client
	channel  string
	queueKey string
}

func NewRedisNotifier(rdb *redis.Client, channel, queueKey string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, channel: channel, queueKey: queueKey}
}

var _ notify.Notifier = (*RedisNotifier)(nil)

func (n *RedisNotifier) Publish(ctx context.Context, ev notify.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = n.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Publish(ctx, n.channel, payload)
		p.LPush(ctx, n.queueKey, payload)
		return nil
	})
	return err
}
