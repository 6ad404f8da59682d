package api

import (
	"net/http"
	"time"

	"buddhist-lent/pledgeboard/internal/common"
)

func (h *Handlers) ParticipantDashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		data, err := h.deps.Services.Dashboard.Participants(r.Context(), r.URL.Query())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Participant dashboard", data)
	}
}

func (h *Handlers) FormReturnDashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		data, err := h.deps.Services.Dashboard.FormReturns(r.Context(), r.URL.Query())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Form return dashboard", data)
	}
}

func (h *Handlers) DashboardSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		data, err := h.deps.Services.Dashboard.Summary(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Dashboard summary", data)
	}
}
