package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that were already handled: provider message
// ids of inbound messages, order-created announcements, published event ids.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It reports false when another caller
	// claimed it first.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	Close() error
}

// IdempotencyConfig controls how long claims last. Disabled turns every
// check into a miss.
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig keeps keys for a week, the provider's webhook
// redelivery window.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 7 * 24 * time.Hour, Enabled: true}
}
