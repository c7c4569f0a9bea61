package views

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"eureka/pkg/realtime/client"
	"eureka/pkg/realtime/wire"
)

// CommentThread shows the comments of one post, oldest first. Comments
// appear only through the new_comment echo, including the viewer's own, so
// the list is identical for every reader of the thread.
type CommentThread struct {
	postID string
	api    API
	scope  *client.Scope
	hooks  changeHooks

	mu       sync.RWMutex
	comments []wire.Comment
}

func NewCommentThread(bus *client.Bus, api API, postID string, logger *slog.Logger) *CommentThread {
	t := &CommentThread{postID: postID, api: api, scope: bus.NewScope()}
	client.On(t.scope, wire.EventNewComment, t.onComment, logger)
	return t
}

func (t *CommentThread) PostID() string { return t.postID }

func (t *CommentThread) Load(ctx context.Context) error {
	fetched, err := t.api.Comments(ctx, t.postID)
	if err != nil {
		return fmt.Errorf("load comments for %s: %w", t.postID, err)
	}
	t.mu.Lock()
	merged := fetched
	for _, c := range t.comments {
		if indexOfComment(merged, c.ID) < 0 {
			merged = append(merged, c)
		}
	}
	slices.SortStableFunc(merged, func(a, b wire.Comment) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	t.comments = merged
	t.mu.Unlock()
	t.hooks.fire()
	return nil
}

// Submit sends a comment. It does not touch the list; the server's
// broadcast adds it.
func (t *CommentThread) Submit(ctx context.Context, content string) error {
	if _, err := t.api.CreateComment(ctx, t.postID, content); err != nil {
		return err
	}
	return nil
}

func (t *CommentThread) onComment(ev wire.NewComment) {
	if ev.PostID != t.postID {
		return
	}
	t.mu.Lock()
	if indexOfComment(t.comments, ev.Comment.ID) >= 0 {
		t.mu.Unlock()
		return
	}
	t.comments = append(t.comments, ev.Comment)
	t.mu.Unlock()
	t.hooks.fire()
}

func (t *CommentThread) Comments() []wire.Comment {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.comments)
}

func (t *CommentThread) OnChange(fn func()) { t.hooks.add(fn) }

func (t *CommentThread) Close() { t.scope.Close() }

func indexOfComment(comments []wire.Comment, id string) int {
	return slices.IndexFunc(comments, func(c wire.Comment) bool { return c.ID == id })
}
