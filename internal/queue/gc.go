package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const purgeTimeout = 2 * time.Minute

// GarbageCollector periodically discards dead-lettered jobs older than the
// retention window. Refresh jobs are time-boxed anyway (NotAfter), so a
// dead letter older than a day carries no information worth replaying.
type GarbageCollector struct {
	purger    DLQPurger
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
}

// NewGarbageCollector creates a collector that purges every interval,
// keeping dead letters younger than retention.
func NewGarbageCollector(purger DLQPurger, interval, retention time.Duration, logger *zap.Logger) *GarbageCollector {
	return &GarbageCollector{
		purger:    purger,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Start runs the purge loop until ctx is cancelled. Individual purge
// failures are logged and the loop keeps going.
func (gc *GarbageCollector) Start(ctx context.Context) error {
	ticker := time.NewTicker(gc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := gc.purgeExpired(ctx); err != nil {
				gc.logger.Warn("dlq_purge_failed", zap.Error(err))
			}
		}
	}
}

func (gc *GarbageCollector) purgeExpired(ctx context.Context) error {
	if gc.purger == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	purged, err := gc.purger.PurgeOlderThan(ctx, gc.retention)
	if err != nil {
		return fmt.Errorf("failed to purge dead letters: %w", err)
	}

	if purged > 0 {
		gc.logger.Info("dlq_purged_dead_letters",
			zap.Int("count", purged),
			zap.Duration("retention", gc.retention),
		)
	}
	return nil
}
