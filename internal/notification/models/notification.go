package models

import (
	"time"

	"eureka/pkg/domain"
	"eureka/pkg/realtime/wire"
)

// Notification tells Recipient that Sender acted on something they own.
type Notification struct {
	ID        domain.NotificationID
	Recipient domain.UserID
	Sender    domain.UserID
	Type      wire.NotificationType
	Content   string
	Link      string
	CreatedAt time.Time
	IsRead    bool
}

func New(recipient, sender domain.UserID, typ wire.NotificationType, content, link string, now time.Time) *Notification {
	return &Notification{
		ID:        domain.NewNotificationID(),
		Recipient: recipient,
		Sender:    sender,
		Type:      typ,
		Content:   content,
		Link:      link,
		CreatedAt: now,
	}
}

// ValidType reports whether t is a notification kind this service emits.
func ValidType(t wire.NotificationType) bool {
	return t == wire.NotificationLike || t == wire.NotificationComment
}

// ToWire hydrates the notification with its sender's profile.
func (n *Notification) ToWire(sender domain.Profile) wire.Notification {
	return wire.Notification{
		ID:        n.ID.String(),
		Recipient: n.Recipient.String(),
		Sender: wire.Author{
			ID:        sender.ID.String(),
			Name:      sender.Name,
			Handle:    sender.Handle,
			AvatarURL: sender.AvatarURL,
		},
		Type:      n.Type,
		Content:   n.Content,
		Link:      n.Link,
		Timestamp: n.CreatedAt,
		IsRead:    n.IsRead,
	}
}
