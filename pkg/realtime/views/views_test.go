package views

//go:generate mockgen -source=views.go -destination=mocks/mocks.go -package=mocks API

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"eureka/pkg/realtime/client"
	"eureka/pkg/realtime/views/mocks"
	"eureka/pkg/realtime/wire"
)

var (
	t0      = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	errDown = errors.New("server unavailable")
)

type ViewsSuite struct {
	suite.Suite
	ctx    context.Context
	ctrl   *gomock.Controller
	api    *mocks.MockAPI
	bus    *client.Bus
	logger *slog.Logger
}

func TestViewsSuite(t *testing.T) {
	suite.Run(t, new(ViewsSuite))
}

func (s *ViewsSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.api = mocks.NewMockAPI(s.ctrl)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.bus = client.NewBus(s.logger)
}

// push delivers an event the way the transport would.
func (s *ViewsSuite) push(eventType wire.EventType, payload any) {
	raw, err := json.Marshal(payload)
	s.Require().NoError(err)
	s.bus.Dispatch(eventType, raw)
}

func post(id string, minutes int) wire.Post {
	return wire.Post{ID: id, Content: "post " + id, Category: "Inquiry", Timestamp: t0.Add(time.Duration(minutes) * time.Minute)}
}

func comment(id string, minutes int) wire.Comment {
	return wire.Comment{ID: id, Content: "comment " + id, Timestamp: t0.Add(time.Duration(minutes) * time.Minute)}
}

func notification(id, recipient string) wire.Notification {
	return wire.Notification{ID: id, Recipient: recipient, Type: wire.NotificationLike, Content: "liked your post."}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func postIDs(posts []wire.Post) []string { return ids(posts, func(p wire.Post) string { return p.ID }) }

func commentIDs(cs []wire.Comment) []string {
	return ids(cs, func(c wire.Comment) string { return c.ID })
}

func (s *ViewsSuite) TestFeed() {
	s.Run("load keeps posts pushed while in flight", func() {
		feed := NewFeed(s.bus, s.api, s.logger)
		defer feed.Close()
		s.api.EXPECT().Posts(gomock.Any()).DoAndReturn(func(context.Context) ([]wire.Post, error) {
			s.push(wire.EventNewPost, post("p3", 3))
			return []wire.Post{post("p2", 2), post("p1", 1)}, nil
		})

		s.Require().NoError(feed.Load(s.ctx))
		s.Equal([]string{"p3", "p2", "p1"}, postIDs(feed.Posts()))
	})

	s.Run("own post arriving twice is shown once", func() {
		feed := NewFeed(s.bus, s.api, s.logger)
		defer feed.Close()
		mine := post("p9", 9)
		s.api.EXPECT().CreatePost(gomock.Any(), "hello", "Discovery").Return(mine, nil)

		_, err := feed.Publish(s.ctx, "hello", "Discovery")
		s.Require().NoError(err)
		s.push(wire.EventNewPost, mine)

		s.Equal([]string{"p9"}, postIDs(feed.Posts()))
	})

	s.Run("publish failure leaves the feed untouched", func() {
		feed := NewFeed(s.bus, s.api, s.logger)
		defer feed.Close()
		s.api.EXPECT().CreatePost(gomock.Any(), gomock.Any(), gomock.Any()).Return(wire.Post{}, errDown)

		_, err := feed.Publish(s.ctx, "hello", "Discovery")
		s.ErrorIs(err, errDown)
		s.Empty(feed.Posts())
	})

	s.Run("closed feed stops listening", func() {
		feed := NewFeed(s.bus, s.api, s.logger)
		changes := 0
		feed.OnChange(func() { changes++ })
		s.push(wire.EventNewPost, post("p1", 1))
		feed.Close()
		s.push(wire.EventNewPost, post("p2", 2))

		s.Equal([]string{"p1"}, postIDs(feed.Posts()))
		s.Equal(1, changes)
		s.Zero(s.bus.Len(wire.EventNewPost))
	})
}

func (s *ViewsSuite) TestCommentThread() {
	s.Run("submit relies on the echo", func() {
		thread := NewCommentThread(s.bus, s.api, "p1", s.logger)
		defer thread.Close()
		s.api.EXPECT().CreateComment(gomock.Any(), "p1", "first!").Return(comment("c1", 1), nil)

		s.Require().NoError(thread.Submit(s.ctx, "first!"))
		s.Empty(thread.Comments(), "nothing is appended before the broadcast")

		s.push(wire.EventNewComment, wire.NewComment{PostID: "p1", Comment: comment("c1", 1)})
		s.Equal([]string{"c1"}, commentIDs(thread.Comments()))
	})

	s.Run("filters by post and ignores repeats", func() {
		thread := NewCommentThread(s.bus, s.api, "p1", s.logger)
		defer thread.Close()

		s.push(wire.EventNewComment, wire.NewComment{PostID: "p2", Comment: comment("x", 1)})
		s.push(wire.EventNewComment, wire.NewComment{PostID: "p1", Comment: comment("c1", 2)})
		s.push(wire.EventNewComment, wire.NewComment{PostID: "p1", Comment: comment("c1", 2)})

		s.Equal([]string{"c1"}, commentIDs(thread.Comments()))
	})

	s.Run("load merges oldest first", func() {
		thread := NewCommentThread(s.bus, s.api, "p1", s.logger)
		defer thread.Close()
		s.push(wire.EventNewComment, wire.NewComment{PostID: "p1", Comment: comment("c3", 3)})
		s.api.EXPECT().Comments(gomock.Any(), "p1").Return([]wire.Comment{comment("c1", 1), comment("c3", 3), comment("c2", 2)}, nil)

		s.Require().NoError(thread.Load(s.ctx))
		s.Equal([]string{"c1", "c2", "c3"}, commentIDs(thread.Comments()))
	})

	s.Run("submit failure is returned", func() {
		thread := NewCommentThread(s.bus, s.api, "p1", s.logger)
		defer thread.Close()
		s.api.EXPECT().CreateComment(gomock.Any(), "p1", "x").Return(wire.Comment{}, errDown)

		s.ErrorIs(thread.Submit(s.ctx, "x"), errDown)
	})
}

func (s *ViewsSuite) TestNotificationSubscribersEachSeeOneBroadcast() {
	badge := NewNotificationBadge(s.bus, s.api, "u1", s.logger)
	defer badge.Close()
	list := NewNotificationList(s.bus, s.api, "u1", s.logger)
	defer list.Close()

	s.push(wire.EventNewNotification, notification("n1", "u1"))

	s.Equal(1, badge.Unread())
	s.Require().Len(list.Items(), 1)
	s.Equal("n1", list.Items()[0].ID)

	s.push(wire.EventNewNotification, notification("n2", "someone-else"))
	s.Equal(1, badge.Unread())
	s.Len(list.Items(), 1)
}

func (s *ViewsSuite) TestNotificationBadge() {
	s.Run("load counts unread", func() {
		badge := NewNotificationBadge(s.bus, s.api, "u1", s.logger)
		defer badge.Close()
		read := notification("n2", "u1")
		read.IsRead = true
		s.api.EXPECT().Notifications(gomock.Any()).Return([]wire.Notification{notification("n1", "u1"), read}, nil)

		s.Require().NoError(badge.Load(s.ctx))
		s.Equal(1, badge.Unread())
	})

	s.Run("mark all read", func() {
		badge := NewNotificationBadge(s.bus, s.api, "u1", s.logger)
		defer badge.Close()
		s.push(wire.EventNewNotification, notification("n1", "u1"))

		s.api.EXPECT().MarkAllRead(gomock.Any()).Return(errDown)
		s.ErrorIs(badge.MarkAllRead(s.ctx), errDown)
		s.Equal(1, badge.Unread())

		s.api.EXPECT().MarkAllRead(gomock.Any()).Return(nil)
		s.Require().NoError(badge.MarkAllRead(s.ctx))
		s.Zero(badge.Unread())
	})
}

func (s *ViewsSuite) TestNotificationListIsCapped() {
	list := NewNotificationList(s.bus, s.api, "u1", s.logger)
	defer list.Close()

	for i := 0; i < NotificationListLimit+5; i++ {
		s.push(wire.EventNewNotification, notification(fmt.Sprintf("n%02d", i), "u1"))
	}

	items := list.Items()
	s.Len(items, NotificationListLimit)
	s.Equal(fmt.Sprintf("n%02d", NotificationListLimit+4), items[0].ID, "newest first")

	s.api.EXPECT().MarkAllRead(gomock.Any()).Return(nil)
	s.Require().NoError(list.MarkAllRead(s.ctx))
	for _, n := range list.Items() {
		s.True(n.IsRead)
	}
}

func (s *ViewsSuite) TestPostCardLike() {
	p := post("p1", 1)
	p.Likes = 10

	s.Run("applies before the server answers and keeps the confirmed state", func() {
		card := NewPostCard(s.bus, s.api, p, s.logger)
		defer card.Close()
		s.api.EXPECT().ToggleLike(gomock.Any(), "p1").DoAndReturn(func(context.Context, string) (wire.LikeState, error) {
			inFlight := card.Post()
			s.Equal(11, inFlight.Likes)
			s.True(inFlight.IsLiked)
			return wire.LikeState{Likes: 11, IsLiked: true}, nil
		})

		s.Require().NoError(card.Like(s.ctx))
		s.Equal(11, card.Post().Likes)
		s.True(card.Post().IsLiked)
	})

	s.Run("rejection restores the exact prior state", func() {
		card := NewPostCard(s.bus, s.api, p, s.logger)
		defer card.Close()
		s.api.EXPECT().ToggleLike(gomock.Any(), "p1").Return(wire.LikeState{}, errDown)

		s.ErrorIs(card.Like(s.ctx), errDown)
		s.Equal(10, card.Post().Likes)
		s.False(card.Post().IsLiked)
	})

	s.Run("unlike", func() {
		liked := p
		liked.IsLiked = true
		card := NewPostCard(s.bus, s.api, liked, s.logger)
		defer card.Close()
		s.api.EXPECT().ToggleLike(gomock.Any(), "p1").Return(wire.LikeState{Likes: 9, IsLiked: false}, nil)

		s.Require().NoError(card.Like(s.ctx))
		s.Equal(9, card.Post().Likes)
		s.False(card.Post().IsLiked)
	})
}

func (s *ViewsSuite) TestPostCardBookmarkAndComments() {
	card := NewPostCard(s.bus, s.api, post("p1", 1), s.logger)
	defer card.Close()
	changes := 0
	card.OnChange(func() { changes++ })

	s.api.EXPECT().ToggleBookmark(gomock.Any(), "p1").Return(wire.BookmarkState{}, errDown)
	s.ErrorIs(card.Bookmark(s.ctx), errDown)
	s.False(card.Post().IsBookmarked)
	s.Equal(2, changes, "once when applied, once when settled")

	s.api.EXPECT().ToggleBookmark(gomock.Any(), "p1").Return(wire.BookmarkState{IsBookmarked: true}, nil)
	s.Require().NoError(card.Bookmark(s.ctx))
	s.True(card.Post().IsBookmarked)

	s.push(wire.EventNewComment, wire.NewComment{PostID: "p1", Comment: comment("c1", 2)})
	s.push(wire.EventNewComment, wire.NewComment{PostID: "p2", Comment: comment("c2", 3)})
	s.Equal(1, card.Post().Comments)
}
