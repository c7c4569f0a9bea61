package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"eureka/internal/feed/models"
	"eureka/pkg/domain"
	"eureka/pkg/platform/sentinel"
)

// InMemoryStore keeps the feed in process memory.
type InMemoryStore struct {
	mu        sync.RWMutex
	posts     map[domain.PostID]*models.Post
	comments  map[domain.PostID][]*models.Comment
	likes     map[domain.PostID]map[domain.UserID]struct{}
	bookmarks map[domain.UserID]map[domain.PostID]time.Time
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		posts:     make(map[domain.PostID]*models.Post),
		comments:  make(map[domain.PostID][]*models.Comment),
		likes:     make(map[domain.PostID]map[domain.UserID]struct{}),
		bookmarks: make(map[domain.UserID]map[domain.PostID]time.Time),
	}
}

func (s *InMemoryStore) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.ID]; ok {
		return fmt.Errorf("post %s: %w", post.ID, sentinel.ErrConflict)
	}
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindPost(_ context.Context, id domain.PostID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.withCounts(p), nil
}

func (s *InMemoryStore) ListPosts(_ context.Context, filter ListFilter) ([]*models.Post, error) {
	s.mu.RLock()
	out := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, s.withCounts(p))
	}
	s.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemoryStore) ListBookmarked(_ context.Context, user domain.UserID) ([]*models.Post, error) {
	s.mu.RLock()
	out := make([]*models.Post, 0, len(s.bookmarks[user]))
	for id := range s.bookmarks[user] {
		if p, ok := s.posts[id]; ok {
			out = append(out, s.withCounts(p))
		}
	}
	s.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemoryStore) ViewerState(_ context.Context, viewer domain.UserID, ids []domain.PostID) (map[domain.PostID]models.ViewerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.PostID]models.ViewerState, len(ids))
	for _, id := range ids {
		_, liked := s.likes[id][viewer]
		_, bookmarked := s.bookmarks[viewer][id]
		out[id] = models.ViewerState{Liked: liked, Bookmarked: bookmarked}
	}
	return out, nil
}

// ToggleLike flips user's like on the post and returns the new state and
// like count.
func (s *InMemoryStore) ToggleLike(_ context.Context, post domain.PostID, user domain.UserID) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post]; !ok {
		return false, 0, sentinel.ErrNotFound
	}
	likers := s.likes[post]
	if likers == nil {
		likers = make(map[domain.UserID]struct{})
		s.likes[post] = likers
	}
	if _, ok := likers[user]; ok {
		delete(likers, user)
		return false, len(likers), nil
	}
	likers[user] = struct{}{}
	return true, len(likers), nil
}

func (s *InMemoryStore) ToggleBookmark(_ context.Context, post domain.PostID, user domain.UserID, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post]; !ok {
		return false, sentinel.ErrNotFound
	}
	marks := s.bookmarks[user]
	if marks == nil {
		marks = make(map[domain.PostID]time.Time)
		s.bookmarks[user] = marks
	}
	if _, ok := marks[post]; ok {
		delete(marks, post)
		return false, nil
	}
	marks[post] = now
	return true, nil
}

func (s *InMemoryStore) CreateComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[c.PostID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *c
	s.comments[c.PostID] = append(s.comments[c.PostID], &cp)
	return nil
}

func (s *InMemoryStore) ListComments(_ context.Context, post domain.PostID) ([]*models.Comment, error) {
	s.mu.RLock()
	out := make([]*models.Comment, 0, len(s.comments[post]))
	for _, c := range s.comments[post] {
		cp := *c
		out = append(out, &cp)
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// withCounts copies p with its aggregates filled in. Caller holds the lock.
func (s *InMemoryStore) withCounts(p *models.Post) *models.Post {
	cp := *p
	cp.Likes = len(s.likes[p.ID])
	cp.Comments = len(s.comments[p.ID])
	return &cp
}

func sortNewestFirst(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}
