package models

import (
	"time"

	"eureka/pkg/domain"
	"eureka/pkg/realtime/wire"
)

// Post is a stored post with its aggregate counts.
type Post struct {
	ID        domain.PostID
	AuthorID  domain.UserID
	Content   string
	Category  domain.Category
	CreatedAt time.Time

	Likes    int
	Comments int
}

func NewPost(author domain.UserID, content string, category domain.Category, now time.Time) *Post {
	return &Post{
		ID:        domain.NewPostID(),
		AuthorID:  author,
		Content:   content,
		Category:  category,
		CreatedAt: now,
	}
}

// ViewerState is what one viewer has done to a post.
type ViewerState struct {
	Liked      bool
	Bookmarked bool
}

func (p *Post) ToWire(author domain.Profile, viewer ViewerState) wire.Post {
	return wire.Post{
		ID:           p.ID.String(),
		Author:       authorToWire(author),
		Content:      p.Content,
		Category:     string(p.Category),
		Timestamp:    p.CreatedAt,
		Likes:        p.Likes,
		Comments:     p.Comments,
		IsLiked:      viewer.Liked,
		IsBookmarked: viewer.Bookmarked,
	}
}

// Link is the client route of the post, used in notifications.
func (p *Post) Link() string {
	return "/posts/" + p.ID.String()
}

type Comment struct {
	ID        domain.CommentID
	PostID    domain.PostID
	AuthorID  domain.UserID
	Content   string
	CreatedAt time.Time
}

func NewComment(post domain.PostID, author domain.UserID, content string, now time.Time) *Comment {
	return &Comment{
		ID:        domain.NewCommentID(),
		PostID:    post,
		AuthorID:  author,
		Content:   content,
		CreatedAt: now,
	}
}

func (c *Comment) ToWire(author domain.Profile) wire.Comment {
	return wire.Comment{
		ID:        c.ID.String(),
		Author:    authorToWire(author),
		Content:   c.Content,
		Timestamp: c.CreatedAt,
	}
}

func authorToWire(p domain.Profile) wire.Author {
	return wire.Author{
		ID:        p.ID.String(),
		Name:      p.Name,
		Handle:    p.Handle,
		AvatarURL: p.AvatarURL,
	}
}
