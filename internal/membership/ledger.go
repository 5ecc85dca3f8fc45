// AngelaMos | 2026
// ledger.go

package membership

import (
	"context"
	"fmt"
	"time"

	"github.com/carterperez-dev/membership/internal/core"
)

const (
	// Stripe retries failed deliveries for up to three days.
	ledgerTTL = 72 * time.Hour
)

type RedisLedger struct {
	redis *core.Redis
	ttl   time.Duration
}

func NewRedisLedger(rdb *core.Redis) *RedisLedger {
	return &RedisLedger{redis: rdb, ttl: ledgerTTL}
}

func (l *RedisLedger) key(eventID string) string {
	return l.redis.Key("webhook", "event", eventID)
}

func (l *RedisLedger) MarkProcessed(
	ctx context.Context,
	eventID string,
) (bool, error) {
	ok, err := l.redis.Client.SetNX(ctx, l.key(eventID), 1, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark event %s: %w", eventID, err)
	}
	return ok, nil
}

func (l *RedisLedger) Release(ctx context.Context, eventID string) error {
	if err := l.redis.Client.Del(ctx, l.key(eventID)).Err(); err != nil {
		return fmt.Errorf("release event %s: %w", eventID, err)
	}
	return nil
}
