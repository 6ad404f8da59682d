package jobs

import (
	"context"
	"sync"
	"time"

	"buddhist-lent/pledgeboard/internal/db/repositories"
	"buddhist-lent/pledgeboard/internal/logging"
	"buddhist-lent/pledgeboard/internal/metrics"
)

const resetTokenJobName = "reset_token_cleanup"

// ResetTokenCleanupJob clears password-reset tokens past their lifetime.
type ResetTokenCleanupJob struct {
	users   *repositories.UserRepository
	ttl     time.Duration
	metrics *metrics.MetricsRegistry
	now     func() time.Time

	mu      sync.Mutex
	lastRun time.Time
}

func NewResetTokenCleanupJob(users *repositories.UserRepository, ttl time.Duration, metricsReg *metrics.MetricsRegistry) *ResetTokenCleanupJob {
	return &ResetTokenCleanupJob{users: users, ttl: ttl, metrics: metricsReg, now: time.Now}
}

func (j *ResetTokenCleanupJob) Run(ctx context.Context) (int64, error) {
	start := j.now()
	defer observe(j.metrics, resetTokenJobName, start)

	cleared, err := j.users.ClearExpiredResetTokens(ctx, start.Add(-j.ttl))
	if err != nil {
		return 0, err
	}
	j.mu.Lock()
	j.lastRun = start
	j.mu.Unlock()

	if cleared > 0 {
		logging.Info("Expired reset tokens cleared", "count", cleared)
	}
	return cleared, nil
}

// LastRun is the start of the last successful run, zero before the first.
func (j *ResetTokenCleanupJob) LastRun() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRun
}

func (j *ResetTokenCleanupJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := j.Run(ctx); err != nil {
				logging.Error("Reset token cleanup failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
