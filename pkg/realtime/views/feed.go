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

// Feed is the post list, newest first. A post can arrive twice, once from
// the REST response of the author's own write and once as the new_post echo;
// the first copy wins.
type Feed struct {
	api    API
	scope  *client.Scope
	logger *slog.Logger
	hooks  changeHooks

	mu    sync.RWMutex
	posts []wire.Post
}

func NewFeed(bus *client.Bus, api API, logger *slog.Logger) *Feed {
	f := &Feed{api: api, scope: bus.NewScope(), logger: logger}
	client.On(f.scope, wire.EventNewPost, func(p wire.Post) { f.Add(p) }, logger)
	return f
}

// Load fetches the feed. Posts pushed while the request was in flight are
// kept.
func (f *Feed) Load(ctx context.Context) error {
	fetched, err := f.api.Posts(ctx)
	if err != nil {
		return fmt.Errorf("load feed: %w", err)
	}
	f.mu.Lock()
	merged := fetched
	for _, p := range f.posts {
		if indexOfPost(merged, p.ID) < 0 {
			merged = append(merged, p)
		}
	}
	slices.SortStableFunc(merged, func(a, b wire.Post) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	f.posts = merged
	f.mu.Unlock()
	f.hooks.fire()
	return nil
}

// Publish creates a post and shows it without waiting for the echo.
func (f *Feed) Publish(ctx context.Context, content, category string) (wire.Post, error) {
	post, err := f.api.CreatePost(ctx, content, category)
	if err != nil {
		return wire.Post{}, err
	}
	f.Add(post)
	return post, nil
}

// Add puts p at the top unless a post with the same id is already shown.
// It reports whether p was added.
func (f *Feed) Add(p wire.Post) bool {
	f.mu.Lock()
	if indexOfPost(f.posts, p.ID) >= 0 {
		f.mu.Unlock()
		f.logger.Debug("duplicate post ignored", "post_id", p.ID)
		return false
	}
	f.posts = slices.Insert(f.posts, 0, p)
	f.mu.Unlock()
	f.hooks.fire()
	return true
}

func (f *Feed) Posts() []wire.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.posts)
}

func (f *Feed) OnChange(fn func()) { f.hooks.add(fn) }

func (f *Feed) Close() { f.scope.Close() }

func indexOfPost(posts []wire.Post, id string) int {
	return slices.IndexFunc(posts, func(p wire.Post) bool { return p.ID == id })
}
