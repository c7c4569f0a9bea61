package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"eureka/internal/notification/models"
	"eureka/pkg/domain"
	dErrors "eureka/pkg/domain-errors"
	"eureka/pkg/realtime/wire"
	"eureka/pkg/requestcontext"
)

// ListLimit caps GET /notifications.
const ListLimit = 20

type Store interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipient domain.UserID, limit int) ([]*models.Notification, error)
	MarkAllRead(ctx context.Context, recipient domain.UserID) (int64, error)
}

type Profiles interface {
	Profile(ctx context.Context, id domain.UserID) (domain.Profile, error)
}

// Publisher pushes events to live connections.
type Publisher interface {
	Broadcast(ctx context.Context, eventType wire.EventType, payload any) error
	BroadcastTo(ctx context.Context, eventType wire.EventType, payload any, recipient domain.UserID) error
}

// NotifyInput describes one notification to record and push.
type NotifyInput struct {
	Recipient domain.UserID
	Sender    domain.UserID
	Type      wire.NotificationType
	Content   string
	Link      string
}

type Service struct {
	store     Store
	profiles  Profiles
	publisher Publisher
	logger    *slog.Logger
	targeted  bool
}

type Option func(*Service)

// WithTargetedDelivery pushes new_notification only to the recipient's
// connections. The default sends it to every connection and leaves
// filtering to clients.
func WithTargetedDelivery(enabled bool) Option {
	return func(s *Service) { s.targeted = enabled }
}

func New(store Store, profiles Profiles, publisher Publisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		profiles:  profiles,
		publisher: publisher,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify records a notification and broadcasts it. Users are never notified
// about their own actions. Only the store write can fail the call.
func (s *Service) Notify(ctx context.Context, in NotifyInput) error {
	if in.Recipient == in.Sender {
		return nil
	}
	if !models.ValidType(in.Type) {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown notification type")
	}

	ctx, span := otel.Tracer("eureka/notification").Start(ctx, "notification.notify")
	defer span.End()
	span.SetAttributes(attribute.String("notification.type", string(in.Type)))

	n := models.New(in.Recipient, in.Sender, in.Type, in.Content, in.Link, requestcontext.Now(ctx))
	if err := s.store.Create(ctx, n); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save notification")
	}

	sender, err := s.profiles.Profile(ctx, in.Sender)
	if err != nil {
		s.logger.WarnContext(ctx, "notification saved but sender lookup failed, skipping broadcast",
			"error", err,
			"notification_id", n.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil
	}

	payload := n.ToWire(sender)
	if s.targeted {
		err = s.publisher.BroadcastTo(ctx, wire.EventNewNotification, payload, n.Recipient)
	} else {
		err = s.publisher.Broadcast(ctx, wire.EventNewNotification, payload)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to broadcast notification",
			"error", err,
			"notification_id", n.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return nil
}

// List returns the recipient's latest notifications, newest first.
func (s *Service) List(ctx context.Context, recipient domain.UserID) ([]wire.Notification, error) {
	items, err := s.store.ListByRecipient(ctx, recipient, ListLimit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load notifications")
	}

	senders := make([]domain.UserID, 0, len(items))
	for _, n := range items {
		senders = append(senders, n.Sender)
	}
	profiles, err := domain.LoadProfiles(ctx, s.profiles, senders)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load notification senders")
	}

	out := make([]wire.Notification, 0, len(items))
	for _, n := range items {
		out = append(out, n.ToWire(profiles[n.Sender]))
	}
	return out, nil
}

// MarkAllRead flags every notification of recipient as read.
func (s *Service) MarkAllRead(ctx context.Context, recipient domain.UserID) error {
	changed, err := s.store.MarkAllRead(ctx, recipient)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notifications read")
	}
	s.logger.DebugContext(ctx, "notifications marked read",
		"user_id", recipient.String(),
		"count", changed,
	)
	return nil
}
