package api

import (
	"net/http"
	"time"

	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/models/dtos"
)

// CreateParticipant handles POST /api/v1/participants (public pledge form).
//
// @Summary      Register a pledge
// @Tags         Participants
// @Accept       json
// @Produce      json
// @Param        input  body      dtos.ParticipantRequest  true  "Pledge"
// @Success      201    {object}  dtos.APIResponse
// @Failure      400    {object}  dtos.APIResponse
// @Router       /api/v1/participants [post]
func (h *Handlers) CreateParticipant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		var req dtos.ParticipantRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		p, err := h.deps.Services.Participants.Create(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Pledge registered", p, http.StatusCreated)
	}
}

// ListParticipants handles GET /api/v1/participants
//
// @Summary      List participants
// @Tags         Participants
// @Produce      json
// @Param        search              query  string  false  "Substring of name, phone or address"
// @Param        groupId             query  int     false  "Group filter"
// @Param        alcoholConsumption  query  string  false  "Status filter"
// @Param        from                query  string  false  "YYYY-MM-DD, inclusive"
// @Param        to                  query  string  false  "YYYY-MM-DD, inclusive"
// @Success      200  {object}  dtos.APIResponse
// @Failure      400  {object}  dtos.APIResponse
// @Router       /api/v1/participants [get]
func (h *Handlers) ListParticipants() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		resp, err := h.deps.Services.Participants.List(r.Context(), r.URL.Query())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Participants fetched", resp)
	}
}

func (h *Handlers) GetParticipant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id, err := pathID(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		p, err := h.deps.Services.Participants.Get(r.Context(), id)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Participant fetched", p)
	}
}

func (h *Handlers) UpdateParticipant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id, err := pathID(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		var req dtos.ParticipantRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		p, err := h.deps.Services.Participants.Update(r.Context(), id, req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Participant updated", p)
	}
}

func (h *Handlers) PatchParticipant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id, err := pathID(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		var patch dtos.ParticipantPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		p, err := h.deps.Services.Participants.Patch(r.Context(), id, patch)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Participant updated", p)
	}
}

func (h *Handlers) DeleteParticipant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id, err := pathID(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		if err := h.deps.Services.Participants.Delete(r.Context(), id); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Participant deleted", nil)
	}
}
