// Package store persists posts, comments, likes and bookmarks.
//
// Both implementations return posts newest first and comments oldest first.
// Missing posts are reported as sentinel.ErrNotFound.
package store

import "eureka/pkg/domain"

// ListFilter narrows ListPosts. The zero value lists every post.
type ListFilter struct {
	Category domain.Category
}
