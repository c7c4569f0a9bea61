package models

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveHandle(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
	}{
		{"Ada Lovelace", `^ada_lovelace\d{4}$`},
		{"  Marie   Curie ", `^marie_curie\d{4}$`},
		{"Rosalind", `^rosalind\d{4}$`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Regexp(t, regexp.MustCompile(tt.pattern), DeriveHandle(tt.name))
		})
	}
}

func TestNewUser(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	u := NewUser("Ada Lovelace", "ada+lab@example.com", []byte("hash"), now)

	assert.False(t, u.ID.IsNil())
	assert.Equal(t, "https://i.pravatar.cc/150?u=ada%2Blab%40example.com", u.AvatarURL)
	assert.Equal(t, now, u.CreatedAt)

	p := u.Profile()
	assert.Equal(t, u.ID, p.ID)
	assert.Equal(t, u.Handle, p.Handle)

	w := u.ToWire()
	assert.Equal(t, u.ID.String(), w.ID)
	assert.Equal(t, "ada+lab@example.com", w.Email)
}
