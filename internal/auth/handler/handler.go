package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"eureka/internal/auth/models"
	"eureka/pkg/domain"
	dErrors "eureka/pkg/domain-errors"
	"eureka/pkg/platform/httputil"
	"eureka/pkg/realtime/wire"
	"eureka/pkg/requestcontext"
)

// Service defines the interface for auth operations.
type Service interface {
	Signup(ctx context.Context, name, email, password string) (*models.Session, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Me(ctx context.Context, userID domain.UserID) (*models.User, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

// Handler serves /auth endpoints.
type Handler struct {
	auth   Service
	logger *slog.Logger
}

func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// RegisterPublic registers routes that do not need a bearer token.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/signup", h.handleSignup)
	r.Post("/auth/login", h.handleLogin)
}

// Register registers routes that run behind RequireAuth.
func (h *Handler) Register(r chi.Router) {
	r.Get("/auth/me", h.handleMe)
	r.Post("/auth/logout", h.handleLogout)
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req wire.SignupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid signup request",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	session, err := h.auth.Signup(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(ctx, w, "signup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, wire.AuthResponse{Token: session.Token, User: session.User.ToWire()})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req wire.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(ctx, w, "login failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, wire.AuthResponse{Token: session.Token, User: session.User.ToWire()})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.auth.Me(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "load current user failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user.ToWire())
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.auth.Logout(ctx, requestcontext.TokenID(ctx), requestcontext.TokenExpiry(ctx)); err != nil {
		h.writeServiceError(ctx, w, "logout failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully."})
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	} else {
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	}
	httputil.WriteError(w, err)
}
