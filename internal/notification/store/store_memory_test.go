package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eureka/internal/notification/models"
	"eureka/pkg/domain"
	"eureka/pkg/realtime/wire"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	alice, bob := domain.NewUserID(), domain.NewUserID()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		n := models.New(alice, bob, wire.NotificationComment, "commented on your post.", "/posts/p1", base.Add(time.Duration(i)*time.Second))
		require.NoError(t, s.Create(ctx, n))
	}
	require.NoError(t, s.Create(ctx, models.New(bob, alice, wire.NotificationLike, "liked your post.", "/posts/p2", base)))

	list, err := s.ListByRecipient(ctx, alice, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, base.Add(2*time.Second), list[0].CreatedAt)
	assert.Equal(t, base.Add(time.Second), list[1].CreatedAt)

	list[0].Content = "mutated"
	again, err := s.ListByRecipient(ctx, alice, 1)
	require.NoError(t, err)
	assert.Equal(t, "commented on your post.", again[0].Content, "callers get copies")

	changed, err := s.MarkAllRead(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(3), changed)

	changed, err = s.MarkAllRead(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, changed)

	bobs, err := s.ListByRecipient(ctx, bob, 0)
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.False(t, bobs[0].IsRead)
}
