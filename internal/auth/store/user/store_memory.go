package user

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"eureka/internal/auth/models"
	"eureka/pkg/domain"
	"eureka/pkg/platform/sentinel"
)

// InMemoryUserStore keeps accounts in process memory. Email lookups are
// case-insensitive.
type InMemoryUserStore struct {
	mu       sync.RWMutex
	users    map[domain.UserID]*models.User
	byEmail  map[string]domain.UserID
	byHandle map[string]domain.UserID
}

func NewInMemory() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:    make(map[domain.UserID]*models.User),
		byEmail:  make(map[string]domain.UserID),
		byHandle: make(map[string]domain.UserID),
	}
}

// Create inserts a new account, failing with sentinel.ErrConflict on a
// duplicate email or handle.
func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	email := strings.ToLower(user.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return fmt.Errorf("email %q: %w", user.Email, sentinel.ErrConflict)
	}
	if _, ok := s.byHandle[user.Handle]; ok {
		return fmt.Errorf("handle %q: %w", user.Handle, sentinel.ErrConflict)
	}
	cp := *user
	s.users[user.ID] = &cp
	s.byEmail[email] = user.ID
	s.byHandle[user.Handle] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}
