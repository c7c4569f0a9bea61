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

// NotificationListLimit matches the server's page size.
const NotificationListLimit = 20

// NotificationBadge counts unread notifications. Notifications may be
// broadcast to every connection, so only those addressed to recipient count.
type NotificationBadge struct {
	recipient string
	api       API
	scope     *client.Scope
	hooks     changeHooks

	mu     sync.RWMutex
	unread int
}

func NewNotificationBadge(bus *client.Bus, api API, recipient string, logger *slog.Logger) *NotificationBadge {
	b := &NotificationBadge{recipient: recipient, api: api, scope: bus.NewScope()}
	client.On(b.scope, wire.EventNewNotification, b.onNotification, logger)
	return b
}

func (b *NotificationBadge) Load(ctx context.Context) error {
	items, err := b.api.Notifications(ctx)
	if err != nil {
		return fmt.Errorf("load notifications: %w", err)
	}
	unread := 0
	for _, n := range items {
		if !n.IsRead {
			unread++
		}
	}
	b.set(unread)
	return nil
}

func (b *NotificationBadge) MarkAllRead(ctx context.Context) error {
	if err := b.api.MarkAllRead(ctx); err != nil {
		return err
	}
	b.set(0)
	return nil
}

func (b *NotificationBadge) onNotification(n wire.Notification) {
	if n.Recipient != b.recipient || n.IsRead {
		return
	}
	b.mu.Lock()
	b.unread++
	b.mu.Unlock()
	b.hooks.fire()
}

func (b *NotificationBadge) set(n int) {
	b.mu.Lock()
	b.unread = n
	b.mu.Unlock()
	b.hooks.fire()
}

func (b *NotificationBadge) Unread() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.unread
}

func (b *NotificationBadge) OnChange(fn func()) { b.hooks.add(fn) }

func (b *NotificationBadge) Close() { b.scope.Close() }

// NotificationList holds the latest notifications for recipient, newest
// first.
type NotificationList struct {
	recipient string
	api       API
	scope     *client.Scope
	hooks     changeHooks

	mu    sync.RWMutex
	items []wire.Notification
}

func NewNotificationList(bus *client.Bus, api API, recipient string, logger *slog.Logger) *NotificationList {
	l := &NotificationList{recipient: recipient, api: api, scope: bus.NewScope()}
	client.On(l.scope, wire.EventNewNotification, l.onNotification, logger)
	return l
}

func (l *NotificationList) Load(ctx context.Context) error {
	items, err := l.api.Notifications(ctx)
	if err != nil {
		return fmt.Errorf("load notifications: %w", err)
	}
	l.mu.Lock()
	l.items = truncate(items)
	l.mu.Unlock()
	l.hooks.fire()
	return nil
}

func (l *NotificationList) MarkAllRead(ctx context.Context) error {
	if err := l.api.MarkAllRead(ctx); err != nil {
		return err
	}
	l.mu.Lock()
	for i := range l.items {
		l.items[i].IsRead = true
	}
	l.mu.Unlock()
	l.hooks.fire()
	return nil
}

func (l *NotificationList) onNotification(n wire.Notification) {
	if n.Recipient != l.recipient {
		return
	}
	l.mu.Lock()
	if slices.ContainsFunc(l.items, func(x wire.Notification) bool { return x.ID == n.ID }) {
		l.mu.Unlock()
		return
	}
	l.items = truncate(slices.Insert(l.items, 0, n))
	l.mu.Unlock()
	l.hooks.fire()
}

func (l *NotificationList) Items() []wire.Notification {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

func (l *NotificationList) OnChange(fn func()) { l.hooks.add(fn) }

func (l *NotificationList) Close() { l.scope.Close() }

func truncate(items []wire.Notification) []wire.Notification {
	if len(items) > NotificationListLimit {
		return items[:NotificationListLimit]
	}
	return items
}
