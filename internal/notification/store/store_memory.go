// Package store persists notifications in memory or Postgres.
package store

import (
	"context"
	"sort"
	"sync"

	"eureka/internal/notification/models"
	"eureka/pkg/domain"
)

// InMemoryStore keeps notifications per recipient in insertion order.
type InMemoryStore struct {
	mu          sync.RWMutex
	byRecipient map[domain.UserID][]*models.Notification
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{byRecipient: make(map[domain.UserID][]*models.Notification)}
}

func (s *InMemoryStore) Create(_ context.Context, n *models.Notification) error {
	cp := *n
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byRecipient[n.Recipient] = append(s.byRecipient[n.Recipient], &cp)
	return nil
}

// ListByRecipient returns up to limit notifications, newest first.
func (s *InMemoryStore) ListByRecipient(_ context.Context, recipient domain.UserID, limit int) ([]*models.Notification, error) {
	s.mu.RLock()
	all := s.byRecipient[recipient]
	out := make([]*models.Notification, 0, len(all))
	for _, n := range all {
		cp := *n
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkAllRead flags every unread notification of recipient and returns how
// many changed.
func (s *InMemoryStore) MarkAllRead(_ context.Context, recipient domain.UserID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changed int64
	for _, n := range s.byRecipient[recipient] {
		if !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed, nil
}
