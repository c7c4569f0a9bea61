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
	CreatePost(ctx context.Context, author domain.UserID, content, category string) (wire.Post, error)
	Get(ctx context.Context, viewer domain.UserID, id domain.PostID) (wire.Post, error)
	List(ctx context.Context, viewer domain.UserID) ([]wire.Post, error)
	ListByCategory(ctx context.Context, viewer domain.UserID, category string) ([]wire.Post, error)
	Bookmarks(ctx context.Context, viewer domain.UserID) ([]wire.Post, error)
	ToggleLike(ctx context.Context, viewer domain.UserID, id domain.PostID) (wire.LikeState, error)
	ToggleBookmark(ctx context.Context, viewer domain.UserID, id domain.PostID) (wire.BookmarkState, error)
	Comments(ctx context.Context, id domain.PostID) ([]wire.Comment, error)
	CreateComment(ctx context.Context, author domain.UserID, id domain.PostID, content string) (wire.Comment, error)
}

// Handler serves posts, comments, likes and bookmarks.
type Handler struct {
	feed   Service
	logger *slog.Logger
}

func New(feed Service, logger *slog.Logger) *Handler {
	return &Handler{feed: feed, logger: logger}
}

// Register registers routes that run behind RequireAuth.
func (h *Handler) Register(r chi.Router) {
	r.Get("/posts", h.handleList)
	r.Post("/posts", h.handleCreatePost)
	r.Get("/posts/category/{category}", h.handleListByCategory)
	r.Get("/posts/{postId}", h.handleGet)
	r.Post("/posts/{postId}/like", h.handleLike)
	r.Post("/posts/{postId}/bookmark", h.handleBookmark)
	r.Get("/posts/{postId}/comments", h.handleListComments)
	r.Post("/posts/{postId}/comments", h.handleCreateComment)
	r.Get("/bookmarks", h.handleBookmarks)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	posts, err := h.feed.List(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "list posts failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, posts)
}

func (h *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req wire.CreatePostRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	post, err := h.feed.CreatePost(ctx, requestcontext.UserID(ctx), req.Content, req.Category)
	if err != nil {
		h.writeServiceError(ctx, w, "create post failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, post)
}

func (h *Handler) handleListByCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	posts, err := h.feed.ListByCategory(ctx, requestcontext.UserID(ctx), chi.URLParam(r, "category"))
	if err != nil {
		h.writeServiceError(ctx, w, "list posts by category failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, posts)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	post, err := h.feed.Get(ctx, requestcontext.UserID(ctx), id)
	if err != nil {
		h.writeServiceError(ctx, w, "get post failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, post)
}

func (h *Handler) handleLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	state, err := h.feed.ToggleLike(ctx, requestcontext.UserID(ctx), id)
	if err != nil {
		h.writeServiceError(ctx, w, "toggle like failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) handleBookmark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	state, err := h.feed.ToggleBookmark(ctx, requestcontext.UserID(ctx), id)
	if err != nil {
		h.writeServiceError(ctx, w, "toggle bookmark failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	posts, err := h.feed.Bookmarks(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "list bookmarks failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, posts)
}

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	comments, err := h.feed.Comments(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, "list comments failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, comments)
}

func (h *Handler) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.postID(w, r)
	if !ok {
		return
	}
	var req wire.CreateCommentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	comment, err := h.feed.CreateComment(ctx, requestcontext.UserID(ctx), id, req.Content)
	if err != nil {
		h.writeServiceError(ctx, w, "create comment failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, comment)
}

func (h *Handler) postID(w http.ResponseWriter, r *http.Request) (domain.PostID, bool) {
	id, err := domain.ParsePostID(chi.URLParam(r, "postId"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.PostID{}, false
	}
	return id, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	} else {
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	}
	httputil.WriteError(w, err)
}
