package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/http/middleware"
	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/service"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"max=128"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresAt   time.Time  `json:"expires_at"`
	User        model.User `json:"user"`
}

type authHandler struct {
	authSvc service.AuthService
	res     *responder
}

func newAuthHandler(authSvc service.AuthService, res *responder) *authHandler {
	return &authHandler{authSvc: authSvc, res: res}
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.res.decode(r, &req); err != nil {
		h.res.writeError(w, r, err)
		return
	}

	user, err := h.authSvc.Register(r.Context(), service.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusCreated, user)
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.res.decode(r, &req); err != nil {
		h.res.writeError(w, r, err)
		return
	}

	result, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   result.ExpiresAt,
		User:        result.User,
	})
}

func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.res.writeError(w, r, apperr.InvalidTokenErr)
		return
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		h.res.writeError(w, r, apperr.InvalidTokenErr.WrapParent(err))
		return
	}

	user, err := h.authSvc.GetUser(r.Context(), userID)
	if err != nil {
		h.res.writeError(w, r, err)
		return
	}

	h.res.writeJSON(w, r, http.StatusOK, user)
}
