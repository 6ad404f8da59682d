package api

import (
	"net/http"
	"time"

	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/models/dtos"
)

func (h *Handlers) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		user, err := h.deps.Services.Users.Get(r.Context(), currentUserID(r))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "User fetched", h.deps.Services.Users.ToResponse(user))
	}
}

// UpdateMyImage handles PUT /api/v1/me/image (multipart field "image").
func (h *Handlers) UpdateMyImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		if err := h.parseMultipart(w, r, 1); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, err := h.formFile(r, "image")
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		if file == nil {
			respondBadRequest(w, initTime, invalidInput("image is required", nil))
			return
		}
		defer file.Close()

		user, err := h.deps.Services.Users.UpdateImage(r.Context(), currentUserID(r), file)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Profile image updated", h.deps.Services.Users.ToResponse(user))
	}
}

// ListUsers handles GET /api/v1/users (admin).
//
// @Summary      List users
// @Tags         Users
// @Produce      json
// @Param        search  query     string  false  "Substring of name or email"
// @Param        role    query     string  false  "admin or member"
// @Param        page    query     int     false  "Page, 1-indexed"
// @Param        limit   query     int     false  "Page size, at most 100"
// @Success      200     {object}  dtos.APIResponse
// @Failure      403     {object}  dtos.APIResponse
// @Router       /api/v1/users [get]
func (h *Handlers) ListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		users := h.deps.Services.Users
		p, err := h.deps.Repo.Users.Resource().ParseParams(r.URL.Query())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		result, err := users.List(r.Context(), p)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		items := make([]dtos.UserResponse, len(result.Items))
		for i := range result.Items {
			items[i] = users.ToResponse(&result.Items[i])
		}
		common.RespondSuccess(w, initTime, "Users fetched", dtos.ListResponse[dtos.UserResponse]{
			Items:      items,
			Pagination: result.Pagination(),
		})
	}
}

func (h *Handlers) SetUserRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id, err := pathID(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		var req dtos.SetRoleRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		user, err := h.deps.Services.Users.SetRole(r.Context(), currentUserID(r), id, req.Role)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Role updated", h.deps.Services.Users.ToResponse(user))
	}
}

func (h *Handlers) DeleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id, err := pathID(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		if err := h.deps.Services.Users.Delete(r.Context(), currentUserID(r), id); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "User deleted", nil)
	}
}

var errFileTooLarge = invalidInput("Uploaded file is too large", nil)
