package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/db/repositories"
	"buddhist-lent/pledgeboard/internal/logging"
	"buddhist-lent/pledgeboard/internal/metrics"
	"buddhist-lent/pledgeboard/internal/storage"
)

const orphanSweepJobName = "orphan_sweep"

// SweepResult summarises one sweep.
type SweepResult struct {
	StartedAt time.Time `json:"startedAt"`
	Duration  string    `json:"duration"`
	Scanned   int       `json:"scanned"`
	Removed   int       `json:"removed"`
	Failed    int       `json:"failed"`
}

// OrphanSweepJob deletes stored images that no row references. Files younger
// than the grace period are skipped: a form return writes its images before
// its row commits.
type OrphanSweepJob struct {
	store   storage.ImageStore
	forms   *repositories.FormReturnRepository
	users   *repositories.UserRepository
	grace   time.Duration
	metrics *metrics.MetricsRegistry
	now     func() time.Time

	mu      sync.Mutex
	running bool
	last    *SweepResult
}

func NewOrphanSweepJob(
	store storage.ImageStore,
	forms *repositories.FormReturnRepository,
	users *repositories.UserRepository,
	grace time.Duration,
	metricsReg *metrics.MetricsRegistry,
) *OrphanSweepJob {
	return &OrphanSweepJob{
		store:   store,
		forms:   forms,
		users:   users,
		grace:   grace,
		metrics: metricsReg,
		now:     time.Now,
	}
}

// ErrAlreadyRunning is returned when a sweep is triggered during another.
var ErrAlreadyRunning = fmt.Errorf("%s is already running", orphanSweepJobName)

func (j *OrphanSweepJob) Run(ctx context.Context) (*SweepResult, error) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	j.running = true
	j.mu.Unlock()
	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
	}()

	start := j.now()
	defer observe(j.metrics, orphanSweepJobName, start)
	logging.Info("Orphan sweep started", "grace_period", j.grace.String())

	referenced, err := j.referencedKeys(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{StartedAt: start}
	cutoff := start.Add(-j.grace)
	for _, folder := range []string{constants.FolderFormReturns, constants.FolderProfiles} {
		objects, err := j.store.List(ctx, folder)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", folder, err)
		}
		for _, obj := range objects {
			result.Scanned++
			if _, ok := referenced[obj.Key]; ok || obj.ModTime.After(cutoff) {
				continue
			}
			if err := j.store.Delete(ctx, obj.Key); err != nil {
				result.Failed++
				logging.Warn("Orphan sweep: failed to delete image", "key", obj.Key, "error", err)
				continue
			}
			result.Removed++
		}
	}

	result.Duration = time.Since(start).Round(time.Millisecond).String()
	if j.metrics != nil {
		j.metrics.OrphansSweptTotal.Add(float64(result.Removed))
	}

	j.mu.Lock()
	j.last = result
	j.mu.Unlock()

	logging.Info("Orphan sweep finished",
		"scanned", result.Scanned,
		"removed", result.Removed,
		"failed", result.Failed,
		"duration", result.Duration,
	)
	return result, nil
}

func (j *OrphanSweepJob) referencedKeys(ctx context.Context) (map[string]struct{}, error) {
	formKeys, err := j.forms.ImageKeys(ctx)
	if err != nil {
		return nil, err
	}
	profileKeys, err := j.users.ProfileImageKeys(ctx)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]struct{}, len(formKeys)+len(profileKeys))
	for _, k := range formKeys {
		refs[k] = struct{}{}
	}
	for _, k := range profileKeys {
		refs[k] = struct{}{}
	}
	return refs, nil
}

// LastResult returns the most recent completed sweep, or nil.
func (j *OrphanSweepJob) LastResult() *SweepResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}

// RunScheduled sweeps every interval until ctx is done.
func (j *OrphanSweepJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := j.Run(ctx); err != nil {
				logging.Error("Orphan sweep failed", "error", err)
			}
		case <-ctx.Done():
			logging.Info("Orphan sweep: shutting down scheduler")
			return
		}
	}
}
