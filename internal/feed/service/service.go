package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"eureka/internal/feed/models"
	"eureka/internal/feed/store"
	notifications "eureka/internal/notification/service"
	"eureka/internal/platform/metrics"
	"eureka/pkg/domain"
	dErrors "eureka/pkg/domain-errors"
	"eureka/pkg/platform/sentinel"
	"eureka/pkg/realtime/wire"
	"eureka/pkg/requestcontext"
)

const (
	maxPostLength    = 5000
	maxCommentLength = 2000

	likedContent     = "liked your post."
	commentedContent = "commented on your post."
)

type Store interface {
	CreatePost(ctx context.Context, post *models.Post) error
	FindPost(ctx context.Context, id domain.PostID) (*models.Post, error)
	ListPosts(ctx context.Context, filter store.ListFilter) ([]*models.Post, error)
	ListBookmarked(ctx context.Context, user domain.UserID) ([]*models.Post, error)
	ViewerState(ctx context.Context, viewer domain.UserID, ids []domain.PostID) (map[domain.PostID]models.ViewerState, error)
	ToggleLike(ctx context.Context, post domain.PostID, user domain.UserID) (bool, int, error)
	ToggleBookmark(ctx context.Context, post domain.PostID, user domain.UserID, now time.Time) (bool, error)
	CreateComment(ctx context.Context, c *models.Comment) error
	ListComments(ctx context.Context, post domain.PostID) ([]*models.Comment, error)
}

type Profiles interface {
	Profile(ctx context.Context, id domain.UserID) (domain.Profile, error)
}

// Publisher pushes events to live connections.
type Publisher interface {
	Broadcast(ctx context.Context, eventType wire.EventType, payload any) error
}

// Notifier records and pushes a notification to a post's author.
type Notifier interface {
	Notify(ctx context.Context, in notifications.NotifyInput) error
}

// Service owns posts, comments, likes and bookmarks. Writes that other users
// should see live are broadcast after the store accepts them.
type Service struct {
	store     Store
	profiles  Profiles
	publisher Publisher
	notifier  Notifier
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, profiles Profiles, publisher Publisher, notifier Notifier, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		profiles:  profiles,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
		tracer:    otel.Tracer("eureka/feed"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePost stores a post and broadcasts it as new_post.
func (s *Service) CreatePost(ctx context.Context, author domain.UserID, content, category string) (wire.Post, error) {
	ctx, span := s.tracer.Start(ctx, "feed.create_post")
	defer span.End()

	content = strings.TrimSpace(content)
	if err := validateText(content, maxPostLength, "post"); err != nil {
		return wire.Post{}, err
	}
	cat := domain.Category(category)
	if !cat.Valid() {
		return wire.Post{}, dErrors.New(dErrors.CodeInvalidInput, "invalid category")
	}

	post := models.NewPost(author, content, cat, requestcontext.Now(ctx))
	if err := s.store.CreatePost(ctx, post); err != nil {
		return wire.Post{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create post")
	}
	s.metrics.IncrementContentCreated("post")
	span.SetAttributes(attribute.String("post.id", post.ID.String()))

	payload := post.ToWire(s.author(ctx, author), models.ViewerState{})
	s.broadcast(ctx, wire.EventNewPost, payload)
	return payload, nil
}

// Get returns one post as seen by viewer.
func (s *Service) Get(ctx context.Context, viewer domain.UserID, id domain.PostID) (wire.Post, error) {
	post, err := s.store.FindPost(ctx, id)
	if err != nil {
		return wire.Post{}, postLookupError(err)
	}
	out, err := s.hydrate(ctx, viewer, []*models.Post{post})
	if err != nil {
		return wire.Post{}, err
	}
	return out[0], nil
}

// List returns every post, newest first.
func (s *Service) List(ctx context.Context, viewer domain.UserID) ([]wire.Post, error) {
	return s.list(ctx, viewer, store.ListFilter{})
}

// ListByCategory returns the posts of one community, newest first.
func (s *Service) ListByCategory(ctx context.Context, viewer domain.UserID, category string) ([]wire.Post, error) {
	cat := domain.Category(category)
	if !cat.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Invalid category specified.")
	}
	return s.list(ctx, viewer, store.ListFilter{Category: cat})
}

// Bookmarks returns the posts viewer has bookmarked.
func (s *Service) Bookmarks(ctx context.Context, viewer domain.UserID) ([]wire.Post, error) {
	posts, err := s.store.ListBookmarked(ctx, viewer)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load bookmarks")
	}
	out, err := s.hydrate(ctx, viewer, posts)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].IsBookmarked = true
	}
	return out, nil
}

// ToggleLike flips viewer's like and returns the authoritative count and
// flag. Liking (not unliking) notifies the post author.
func (s *Service) ToggleLike(ctx context.Context, viewer domain.UserID, id domain.PostID) (wire.LikeState, error) {
	post, err := s.store.FindPost(ctx, id)
	if err != nil {
		return wire.LikeState{}, postLookupError(err)
	}
	liked, count, err := s.store.ToggleLike(ctx, id, viewer)
	if err != nil {
		return wire.LikeState{}, postLookupError(err)
	}
	if liked {
		s.notify(ctx, notifications.NotifyInput{
			Recipient: post.AuthorID,
			Sender:    viewer,
			Type:      wire.NotificationLike,
			Content:   likedContent,
			Link:      post.Link(),
		})
	}
	return wire.LikeState{Likes: count, IsLiked: liked}, nil
}

// ToggleBookmark flips viewer's bookmark on the post.
func (s *Service) ToggleBookmark(ctx context.Context, viewer domain.UserID, id domain.PostID) (wire.BookmarkState, error) {
	on, err := s.store.ToggleBookmark(ctx, id, viewer, requestcontext.Now(ctx))
	if err != nil {
		return wire.BookmarkState{}, postLookupError(err)
	}
	return wire.BookmarkState{IsBookmarked: on}, nil
}

// Comments returns a post's comments, oldest first.
func (s *Service) Comments(ctx context.Context, id domain.PostID) ([]wire.Comment, error) {
	comments, err := s.store.ListComments(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load comments")
	}
	authors := make([]domain.UserID, 0, len(comments))
	for _, c := range comments {
		authors = append(authors, c.AuthorID)
	}
	profiles, err := domain.LoadProfiles(ctx, s.profiles, authors)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load comment authors")
	}
	out := make([]wire.Comment, 0, len(comments))
	for _, c := range comments {
		out = append(out, c.ToWire(profiles[c.AuthorID]))
	}
	return out, nil
}

// CreateComment stores a comment, broadcasts it as new_comment and notifies
// the post author.
func (s *Service) CreateComment(ctx context.Context, author domain.UserID, id domain.PostID, content string) (wire.Comment, error) {
	ctx, span := s.tracer.Start(ctx, "feed.create_comment",
		trace.WithAttributes(attribute.String("post.id", id.String())))
	defer span.End()

	content = strings.TrimSpace(content)
	if err := validateText(content, maxCommentLength, "comment"); err != nil {
		return wire.Comment{}, err
	}
	post, err := s.store.FindPost(ctx, id)
	if err != nil {
		return wire.Comment{}, postLookupError(err)
	}

	comment := models.NewComment(id, author, content, requestcontext.Now(ctx))
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return wire.Comment{}, postLookupError(err)
	}
	s.metrics.IncrementContentCreated("comment")

	out := comment.ToWire(s.author(ctx, author))
	s.broadcast(ctx, wire.EventNewComment, wire.NewComment{PostID: id.String(), Comment: out})
	s.notify(ctx, notifications.NotifyInput{
		Recipient: post.AuthorID,
		Sender:    author,
		Type:      wire.NotificationComment,
		Content:   commentedContent,
		Link:      post.Link(),
	})
	return out, nil
}

func (s *Service) list(ctx context.Context, viewer domain.UserID, filter store.ListFilter) ([]wire.Post, error) {
	posts, err := s.store.ListPosts(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load posts")
	}
	return s.hydrate(ctx, viewer, posts)
}

// hydrate attaches author profiles and viewer flags, preserving order.
func (s *Service) hydrate(ctx context.Context, viewer domain.UserID, posts []*models.Post) ([]wire.Post, error) {
	out := make([]wire.Post, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}
	ids := make([]domain.PostID, 0, len(posts))
	authors := make([]domain.UserID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		authors = append(authors, p.AuthorID)
	}

	profiles, err := domain.LoadProfiles(ctx, s.profiles, authors)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load post authors")
	}
	states, err := s.store.ViewerState(ctx, viewer, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load viewer state")
	}
	for _, p := range posts {
		out = append(out, p.ToWire(profiles[p.AuthorID], states[p.ID]))
	}
	return out, nil
}

// author loads the writer's profile for a stored post or comment. The write
// has already succeeded, so a failed lookup degrades to the bare id.
func (s *Service) author(ctx context.Context, id domain.UserID) domain.Profile {
	profile, err := s.profiles.Profile(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "author lookup failed after write",
			"error", err,
			"user_id", id.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return domain.Profile{ID: id}
	}
	return profile
}

// broadcast never fails the caller; the write it announces is already stored.
func (s *Service) broadcast(ctx context.Context, eventType wire.EventType, payload any) {
	if err := s.publisher.Broadcast(ctx, eventType, payload); err != nil {
		s.logger.ErrorContext(ctx, "failed to broadcast event",
			"error", err,
			"event_type", eventType.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) notify(ctx context.Context, in notifications.NotifyInput) {
	if err := s.notifier.Notify(ctx, in); err != nil {
		s.logger.WarnContext(ctx, "failed to notify post author",
			"error", err,
			"notification_type", string(in.Type),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func validateText(content string, max int, what string) error {
	if content == "" {
		return dErrors.New(dErrors.CodeInvalidInput, what+" content cannot be empty")
	}
	if !govalidator.IsByteLength(content, 1, max) {
		return dErrors.New(dErrors.CodeInvalidInput, what+" is too long")
	}
	return nil
}

func postLookupError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "Post not found.")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load post")
}
