package api

import (
	"net/http"
	"time"

	"buddhist-lent/pledgeboard/internal/auth"
	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/models/dtos"
)

// Signup handles POST /api/v1/auth/signup
//
// @Summary      Create a member account
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        input  body      dtos.SignupRequest  true  "Account details"
// @Success      201    {object}  dtos.APIResponse
// @Failure      400    {object}  dtos.APIResponse
// @Router       /api/v1/auth/signup [post]
func (h *Handlers) Signup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		var req dtos.SignupRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		user, err := h.deps.Services.Auth.Signup(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Account created", h.deps.Services.Users.ToResponse(user), http.StatusCreated)
	}
}

// Login handles POST /api/v1/auth/login. The session id is set as an
// HttpOnly cookie and a bearer token is returned for API clients.
//
// @Summary      Sign in
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        input  body      dtos.LoginRequest  true  "Credentials"
// @Success      200    {object}  dtos.APIResponse
// @Failure      401    {object}  dtos.APIResponse
// @Router       /api/v1/auth/login [post]
func (h *Handlers) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		var req dtos.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		res, err := h.deps.Services.Auth.Login(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		http.SetCookie(w, common.SessionCookie(h.deps.Config.CookieName, res.Session.SessionID,
			res.Session.ExpiresAt, h.deps.Config.IsProduction()))

		common.RespondSuccess(w, initTime, "Signed in", dtos.LoginResponse{
			User:      h.deps.Services.Users.ToResponse(res.User),
			Token:     res.Token,
			ExpiresAt: res.ExpiresAt,
		})
	}
}

func (h *Handlers) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		if claims := auth.GetUserClaims(r.Context()); claims != nil {
			h.deps.Services.Auth.Logout(r.Context(), claims)
		}
		http.SetCookie(w, common.SessionCookie(h.deps.Config.CookieName, "", time.Time{}, h.deps.Config.IsProduction()))
		common.RespondSuccess(w, initTime, "Signed out", nil)
	}
}

// ForgotPassword always answers the same way so the endpoint cannot be used
// to probe for registered addresses.
func (h *Handlers) ForgotPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		var req dtos.ForgotPasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		if err := h.deps.Services.Auth.ForgotPassword(r.Context(), req); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "If the address is registered, a reset link has been sent", nil)
	}
}

func (h *Handlers) ResetPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		var req dtos.ResetPasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		if err := h.deps.Services.Auth.ResetPassword(r.Context(), req); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Password updated", nil)
	}
}
