// Package views holds headless client state that stays current by listening
// to realtime events: the feed, a comment thread, notifications and a post
// card with optimistic toggles. Each view owns a client.Scope and must be
// closed when no longer shown.
package views

import (
	"context"
	"slices"
	"sync"

	"eureka/pkg/realtime/wire"
)

// API is the subset of the REST client the views call. *api.Client
// satisfies it.
type API interface {
	Posts(ctx context.Context) ([]wire.Post, error)
	CreatePost(ctx context.Context, content, category string) (wire.Post, error)
	Comments(ctx context.Context, postID string) ([]wire.Comment, error)
	CreateComment(ctx context.Context, postID, content string) (wire.Comment, error)
	ToggleLike(ctx context.Context, postID string) (wire.LikeState, error)
	ToggleBookmark(ctx context.Context, postID string) (wire.BookmarkState, error)
	Notifications(ctx context.Context) ([]wire.Notification, error)
	MarkAllRead(ctx context.Context) error
}

// changeHooks fans a "state changed" signal out to observers. Hooks run on
// the goroutine that changed the view, without the view's lock held.
type changeHooks struct {
	mu  sync.Mutex
	fns []func()
}

func (h *changeHooks) add(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = append(h.fns, fn)
}

func (h *changeHooks) fire() {
	h.mu.Lock()
	fns := slices.Clone(h.fns)
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
