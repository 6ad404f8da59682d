package api

import (
	"net/http"
	"time"

	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/models/dtos"
)

// ListGroups is public; the pledge form uses it as its group dropdown.
func (h *Handlers) ListGroups() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		resp, err := h.deps.Services.Groups.List(r.Context(), r.URL.Query())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Groups fetched", resp)
	}
}

func (h *Handlers) GetGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id, err := pathID(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		g, err := h.deps.Services.Groups.Get(r.Context(), id)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Group fetched", g)
	}
}

func (h *Handlers) CreateGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		var req dtos.GroupRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		g, err := h.deps.Services.Groups.Create(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Group created", g, http.StatusCreated)
	}
}

func (h *Handlers) UpdateGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id, err := pathID(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		var req dtos.GroupRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		g, err := h.deps.Services.Groups.Update(r.Context(), id, req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Group updated", g)
	}
}

// DeleteGroup answers 400 while participants still reference the group.
func (h *Handlers) DeleteGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id, err := pathID(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		if err := h.deps.Services.Groups.Delete(r.Context(), id); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Group deleted", nil)
	}
}
