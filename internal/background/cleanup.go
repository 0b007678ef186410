package background

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper runs the retention sweeps the cleanup manager drives.
type Sweeper interface {
	CleanupOldAttempts(ctx context.Context, retention time.Duration) (int64, error)
	CleanupExpiredRateLimits(ctx context.Context) (int64, error)
}

// CodeSweeper removes expired verification codes.
type CodeSweeper interface {
	CleanupExpiredCodes(ctx context.Context) (int64, error)
}

// CleanupManager periodically prunes the ledger, lapsed rate limit rows and
// expired verification codes. One failed sweep does not stop the others.
type CleanupManager struct {
	security  Sweeper
	codes     CodeSweeper
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
	stopCh    chan struct{}
}

func NewCleanupManager(security Sweeper, codes CodeSweeper, retention, interval time.Duration, logger *slog.Logger) *CleanupManager {
	return &CleanupManager{
		security:  security,
		codes:     codes,
		retention: retention,
		interval:  interval,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the sweeps immediately and then on every tick until Stop is
// called or ctx is cancelled. Blocks; run it in its own goroutine.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.runSweeps(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runSweeps(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// Stop signals the cleanup manager to stop.
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}

func (cm *CleanupManager) runSweeps(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := cm.security.CleanupOldAttempts(sweepCtx, cm.retention); err != nil {
		cm.logger.Error("login attempt sweep failed", slog.Any("error", err))
	}

	if _, err := cm.security.CleanupExpiredRateLimits(sweepCtx); err != nil {
		cm.logger.Error("rate limit sweep failed", slog.Any("error", err))
	}

	if cm.codes != nil {
		if _, err := cm.codes.CleanupExpiredCodes(sweepCtx); err != nil {
			cm.logger.Error("verification code sweep failed", slog.Any("error", err))
		}
	}
}
