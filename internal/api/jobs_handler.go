package api

import (
	"errors"
	"net/http"
	"time"

	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/jobs"
	"buddhist-lent/pledgeboard/internal/logging"
)

// TriggerOrphanSweep runs the orphan image sweep synchronously.
//
// @Summary      Trigger orphan image sweep
// @Description  Deletes stored images older than the grace period that no row references.
// @Tags         admin,jobs
// @Produce      json
// @Success      200  {object}  jobs.SweepResult
// @Failure      409  {object}  dtos.APIResponse
// @Router       /api/v1/admin/jobs/sweep-orphans [post]
func (h *Handlers) TriggerOrphanSweep() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		logging.Info("Orphan sweep manually triggered", "user_id", currentUserID(r))

		result, err := h.deps.Jobs.OrphanSweep.Run(r.Context())
		if errors.Is(err, jobs.ErrAlreadyRunning) {
			common.RespondError(w, initTime, err, "Orphan sweep is already running", http.StatusConflict)
			return
		}
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Orphan sweep completed", result)
	}
}

// GetJobStatus handles GET /api/v1/admin/jobs/status
func (h *Handlers) GetJobStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		common.RespondSuccess(w, initTime, "Job status retrieved", map[string]any{
			"jobs": h.deps.Jobs.Status(),
		})
	}
}
