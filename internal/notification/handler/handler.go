package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eureka/pkg/domain"
	dErrors "eureka/pkg/domain-errors"
	"eureka/pkg/platform/httputil"
	"eureka/pkg/realtime/wire"
	"eureka/pkg/requestcontext"
)

type Service interface {
	List(ctx context.Context, recipient domain.UserID) ([]wire.Notification, error)
	MarkAllRead(ctx context.Context, recipient domain.UserID) error
}

// Handler serves the signed-in user's notifications.
type Handler struct {
	notifications Service
	logger        *slog.Logger
}

func New(notifications Service, logger *slog.Logger) *Handler {
	return &Handler{notifications: notifications, logger: logger}
}

// Register registers routes that run behind RequireAuth.
func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.handleList)
	r.Post("/notifications/read-all", h.handleReadAll)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := h.notifications.List(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "list notifications failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) handleReadAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.notifications.MarkAllRead(ctx, requestcontext.UserID(ctx)); err != nil {
		h.writeServiceError(ctx, w, "mark notifications read failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	} else {
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	}
	httputil.WriteError(w, err)
}
