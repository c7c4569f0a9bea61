package views

import (
	"context"
	"log/slog"
	"sync/atomic"

	"eureka/pkg/realtime/client"
	"eureka/pkg/realtime/optimistic"
	"eureka/pkg/realtime/wire"
)

// PostCard is one post with like and bookmark buttons. Toggles apply
// immediately and settle on the server's answer; on failure the local change
// is undone and the error returned for the caller to surface.
type PostCard struct {
	post     wire.Post
	api      API
	scope    *client.Scope
	like     *optimistic.Toggle
	bookmark *optimistic.Toggle
	comments atomic.Int64
	hooks    changeHooks
}

func NewPostCard(bus *client.Bus, api API, post wire.Post, logger *slog.Logger) *PostCard {
	c := &PostCard{
		post:     post,
		api:      api,
		scope:    bus.NewScope(),
		like:     optimistic.NewToggle(post.Likes, post.IsLiked),
		bookmark: optimistic.NewToggle(0, post.IsBookmarked),
	}
	c.comments.Store(int64(post.Comments))
	client.On(c.scope, wire.EventNewComment, func(ev wire.NewComment) {
		if ev.PostID == post.ID {
			c.comments.Add(1)
			c.hooks.fire()
		}
	}, logger)
	return c
}

// Like toggles the viewer's like.
func (c *PostCard) Like(ctx context.Context) error {
	_, err := c.like.Do(func() (optimistic.Snapshot, error) {
		c.hooks.fire()
		st, err := c.api.ToggleLike(ctx, c.post.ID)
		return optimistic.Snapshot{Count: st.Likes, Active: st.IsLiked}, err
	})
	c.hooks.fire()
	return err
}

// Bookmark toggles the viewer's bookmark.
func (c *PostCard) Bookmark(ctx context.Context) error {
	_, err := c.bookmark.Do(func() (optimistic.Snapshot, error) {
		c.hooks.fire()
		st, err := c.api.ToggleBookmark(ctx, c.post.ID)
		return optimistic.Snapshot{Active: st.IsBookmarked}, err
	})
	c.hooks.fire()
	return err
}

// Post is the card's current rendering of the post.
func (c *PostCard) Post() wire.Post {
	p := c.post
	like := c.like.Snapshot()
	p.Likes, p.IsLiked = like.Count, like.Active
	p.IsBookmarked = c.bookmark.Snapshot().Active
	p.Comments = int(c.comments.Load())
	return p
}

func (c *PostCard) OnChange(fn func()) { c.hooks.add(fn) }

func (c *PostCard) Close() { c.scope.Close() }
