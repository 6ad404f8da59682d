package jobs

import (
	"context"
	"time"

	"buddhist-lent/pledgeboard/internal/db/repositories"
	"buddhist-lent/pledgeboard/internal/metrics"
	"buddhist-lent/pledgeboard/internal/storage"
)

// Jobs holds the background jobs so handlers can trigger them manually.
type Jobs struct {
	OrphanSweep *OrphanSweepJob
	ResetTokens *ResetTokenCleanupJob

	cfg Config
}

type Config struct {
	SweepInterval time.Duration
	GracePeriod   time.Duration
	ResetTTL      time.Duration
}

// Info describes one scheduled job for the admin status endpoint.
type Info struct {
	Name     string       `json:"name"`
	Schedule string       `json:"schedule"`
	LastRun  *time.Time   `json:"lastRun,omitempty"`
	Last     *SweepResult `json:"lastResult,omitempty"`
}

func NewJobs(
	store storage.ImageStore,
	forms *repositories.FormReturnRepository,
	users *repositories.UserRepository,
	metricsReg *metrics.MetricsRegistry,
	cfg Config,
) *Jobs {
	return &Jobs{
		OrphanSweep: NewOrphanSweepJob(store, forms, users, cfg.GracePeriod, metricsReg),
		ResetTokens: NewResetTokenCleanupJob(users, cfg.ResetTTL, metricsReg),
		cfg:         cfg,
	}
}

// Start launches every job on its schedule until ctx is cancelled.
func (j *Jobs) Start(ctx context.Context) {
	go j.OrphanSweep.RunScheduled(ctx, j.cfg.SweepInterval)
	go j.ResetTokens.RunScheduled(ctx, j.cfg.ResetTTL)
}

func (j *Jobs) Status() []Info {
	sweep := Info{
		Name:     orphanSweepJobName,
		Schedule: "every " + j.cfg.SweepInterval.String(),
		Last:     j.OrphanSweep.LastResult(),
	}
	if sweep.Last != nil {
		at := sweep.Last.StartedAt
		sweep.LastRun = &at
	}

	tokens := Info{
		Name:     resetTokenJobName,
		Schedule: "every " + j.cfg.ResetTTL.String(),
	}
	if at := j.ResetTokens.LastRun(); !at.IsZero() {
		tokens.LastRun = &at
	}
	return []Info{sweep, tokens}
}

func observe(m *metrics.MetricsRegistry, job string, start time.Time) {
	if m != nil {
		m.JobDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
	}
}
