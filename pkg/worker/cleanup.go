package worker

import (
	"context"
	"time"

	"github.com/acube-health/acube-api/internal/repository"
	"github.com/acube-health/acube-api/pkg/logger"
)

type CleanupConfig struct {
	Interval        time.Duration
	OutboxRetention time.Duration
}

func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		Interval:        time.Hour,
		OutboxRetention: 7 * 24 * time.Hour,
	}
}

// Cleanup periodically purges processed outbox events and expired
// refresh tokens.
type Cleanup struct {
	outbox repository.OutboxRepository
	tokens repository.TokenRepository
	config CleanupConfig
	logger *logger.Logger
}

func NewCleanup(outbox repository.OutboxRepository, tokens repository.TokenRepository, config CleanupConfig, l *logger.Logger) *Cleanup {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	if config.OutboxRetention <= 0 {
		config.OutboxRetention = 7 * 24 * time.Hour
	}
	return &Cleanup{outbox: outbox, tokens: tokens, config: config, logger: l}
}

func (c *Cleanup) Start(ctx context.Context) {
	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	c.logger.Info("starting cleanup worker")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("shutting down cleanup worker")
			return
		case <-ticker.C:
			c.run(ctx)
		}
	}
}

func (c *Cleanup) run(ctx context.Context) {
	now := time.Now().UTC()

	if n, err := c.outbox.DeleteProcessedBefore(ctx, now.Add(-c.config.OutboxRetention)); err != nil {
		c.logger.Error(err, "failed to purge processed outbox events")
	} else if n > 0 {
		c.logger.Info("purged processed outbox events", "count", n)
	}

	if n, err := c.tokens.DeleteExpired(ctx, now); err != nil {
		c.logger.Error(err, "failed to purge expired refresh tokens")
	} else if n > 0 {
		c.logger.Info("purged expired refresh tokens", "count", n)
	}
}
