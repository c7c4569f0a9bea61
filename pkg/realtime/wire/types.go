package wire

import "time"

// Author is the public profile inlined into posts, comments and notifications.
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Handle    string `json:"handle"`
	AvatarURL string `json:"avatarUrl"`
}

// User is the signed-in account as returned by the auth endpoints.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Handle    string `json:"handle"`
	AvatarURL string `json:"avatarUrl"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Post is the hydrated post. Flags are relative to the viewer.
type Post struct {
	ID           string    `json:"id"`
	Author       Author    `json:"author"`
	Content      string    `json:"content"`
	Category     string    `json:"category"`
	Timestamp    time.Time `json:"timestamp"`
	Likes        int       `json:"likes"`
	Comments     int       `json:"comments"`
	IsLiked      bool      `json:"isLiked"`
	IsBookmarked bool      `json:"isBookmarked"`
}

type Comment struct {
	ID        string    `json:"id"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewComment is the new_comment payload. PostID lets subscribers filter to
// the thread they display.
type NewComment struct {
	PostID  string  `json:"postId"`
	Comment Comment `json:"comment"`
}

type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
)

// Notification is the new_notification payload and the list item of
// GET /notifications. Recipient lets consumers filter globally broadcast
// notifications to their own.
type Notification struct {
	ID        string           `json:"id"`
	Recipient string           `json:"recipient"`
	Sender    Author           `json:"sender"`
	Type      NotificationType `json:"type"`
	Content   string           `json:"content"`
	Link      string           `json:"link"`
	Timestamp time.Time        `json:"timestamp"`
	IsRead    bool             `json:"isRead"`
}

// LikeState is the server-confirmed result of a like toggle.
type LikeState struct {
	Likes   int  `json:"likes"`
	IsLiked bool `json:"isLiked"`
}

// BookmarkState is the server-confirmed result of a bookmark toggle.
type BookmarkState struct {
	IsBookmarked bool `json:"isBookmarked"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreatePostRequest struct {
	Content  string `json:"content"`
	Category string `json:"category"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}
