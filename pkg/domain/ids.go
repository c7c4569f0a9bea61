// Package domain holds the typed identifiers and small value types shared by
// every module. Typed IDs keep a PostID from being passed where a UserID is
// expected.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "eureka/pkg/domain-errors"
)

type (
	UserID         uuid.UUID
	PostID         uuid.UUID
	CommentID      uuid.UUID
	NotificationID uuid.UUID
)

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id PostID) String() string         { return uuid.UUID(id).String() }
func (id CommentID) String() string      { return uuid.UUID(id).String() }
func (id NotificationID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id PostID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id CommentID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func NewUserID() UserID                 { return UserID(uuid.New()) }
func NewPostID() PostID                 { return PostID(uuid.New()) }
func NewCommentID() CommentID           { return CommentID(uuid.New()) }
func NewNotificationID() NotificationID { return NotificationID(uuid.New()) }

// ParseUserID parses a user id at a trust boundary (token claims, path params).
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

func ParsePostID(s string) (PostID, error) {
	u, err := parseUUID(s, "post id")
	return PostID(u), err
}

func ParseCommentID(s string) (CommentID, error) {
	u, err := parseUUID(s, "comment id")
	return CommentID(u), err
}

func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID(s, "notification id")
	return NotificationID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	return u, nil
}
