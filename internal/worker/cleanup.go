// AngelaMos | 2026
// cleanup.go

package worker

import (
	"context"
	"log/slog"
	"time"
)

type TokenStore interface {
	ClearExpiredTokens(ctx context.Context) (int64, error)
}

// TokenCleaner periodically drops expired verification and reset tokens.
// Expiry is also enforced on read, so a missed run is harmless.
type TokenCleaner struct {
	store    TokenStore
	interval time.Duration
	logger   *slog.Logger
}

func NewTokenCleaner(
	store TokenStore,
	interval time.Duration,
	logger *slog.Logger,
) *TokenCleaner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenCleaner{
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled.
func (c *TokenCleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Info("token cleanup worker started", "interval", c.interval)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("token cleanup worker stopped")
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

func (c *TokenCleaner) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cleared, err := c.store.ClearExpiredTokens(runCtx)
	if err != nil {
		c.logger.Error("token cleanup failed", "error", err)
		return
	}

	if cleared > 0 {
		c.logger.Info("expired tokens cleared", "users", cleared)
	}
}
