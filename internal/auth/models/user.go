package models

import (
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"eureka/pkg/domain"
	"eureka/pkg/realtime/wire"
)

// User is a registered account. PasswordHash never leaves the auth module.
type User struct {
	ID           domain.UserID
	Name         string
	Email        string
	Handle       string
	AvatarURL    string
	PasswordHash []byte
	CreatedAt    time.Time
}

// NewUser builds an account with a derived handle and avatar.
func NewUser(name, email string, passwordHash []byte, now time.Time) *User {
	return &User{
		ID:           domain.NewUserID(),
		Name:         name,
		Email:        email,
		Handle:       DeriveHandle(name),
		AvatarURL:    AvatarURL(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
}

// DeriveHandle lowercases the name, replaces whitespace with underscores and
// appends a four digit suffix.
func DeriveHandle(name string) string {
	base := strings.Join(strings.Fields(strings.ToLower(name)), "_")
	return fmt.Sprintf("%s%04d", base, rand.Intn(10000))
}

// AvatarURL is a deterministic placeholder avatar keyed by email.
func AvatarURL(email string) string {
	return "https://i.pravatar.cc/150?u=" + url.QueryEscape(email)
}

// Profile is the public view of the user.
func (u *User) Profile() domain.Profile {
	return domain.Profile{ID: u.ID, Name: u.Name, Handle: u.Handle, AvatarURL: u.AvatarURL}
}

// ToWire renders the account for auth responses.
func (u *User) ToWire() wire.User {
	return wire.User{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Handle:    u.Handle,
		AvatarURL: u.AvatarURL,
	}
}

// Session is the result of a successful signup or login.
type Session struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
	User      *User
}
