package domain

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Profile is the public slice of a user that gets inlined into posts, comments
// and notifications as author/sender info.
type Profile struct {
	ID        UserID
	Name      string
	Handle    string
	AvatarURL string
}

// ProfileSource resolves a user id to its public profile.
type ProfileSource interface {
	Profile(ctx context.Context, id UserID) (Profile, error)
}

const profileFetchLimit = 8

// LoadProfiles resolves every distinct id concurrently. The first failure
// cancels the rest and is returned.
func LoadProfiles(ctx context.Context, src ProfileSource, ids []UserID) (map[UserID]Profile, error) {
	unique := make(map[UserID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	var mu sync.Mutex
	out := make(map[UserID]Profile, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(profileFetchLimit)
	for id := range unique {
		id := id
		g.Go(func() error {
			p, err := src.Profile(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = p
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
