package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"eureka/pkg/domain"
	"eureka/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) { return s.claims, s.err }

type stubRevocation struct {
	revoked bool
	err     error
}

func (s stubRevocation) IsTokenRevoked(context.Context, string) (bool, error) {
	return s.revoked, s.err
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userID := domain.NewUserID()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	valid := &JWTClaims{UserID: userID.String(), Email: "ada@example.com", JTI: "jti-1", ExpiresAt: exp}

	tests := []struct {
		name       string
		header     string
		validator  JWTValidator
		revocation TokenRevocationChecker
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", stubValidator{claims: valid}, stubRevocation{}, http.StatusUnauthorized, "Missing or invalid Authorization header"},
		{"wrong scheme", "Basic abc", stubValidator{claims: valid}, stubRevocation{}, http.StatusUnauthorized, "Missing or invalid Authorization header"},
		{"invalid token", "Bearer bad", stubValidator{err: errors.New("bad sig")}, stubRevocation{}, http.StatusUnauthorized, "Invalid or expired token"},
		{"bad subject", "Bearer tok", stubValidator{claims: &JWTClaims{UserID: "nope", JTI: "j"}}, stubRevocation{}, http.StatusUnauthorized, "Invalid or expired token"},
		{"missing jti", "Bearer tok", stubValidator{claims: &JWTClaims{UserID: userID.String()}}, stubRevocation{}, http.StatusUnauthorized, "Invalid or expired token"},
		{"revoked", "Bearer tok", stubValidator{claims: valid}, stubRevocation{revoked: true}, http.StatusUnauthorized, "Token has been revoked"},
		{"revocation store down", "Bearer tok", stubValidator{claims: valid}, stubRevocation{err: errors.New("redis down")}, http.StatusInternalServerError, "internal_error"},
		{"valid", "Bearer tok", stubValidator{claims: valid}, stubRevocation{}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser domain.UserID
			var gotJTI string
			var gotExp time.Time
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = requestcontext.UserID(r.Context())
				gotJTI = requestcontext.TokenID(r.Context())
				gotExp = requestcontext.TokenExpiry(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			RequireAuth(tt.validator, tt.revocation, logger)(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rr.Body.String(), tt.wantBody)
			}
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, userID, gotUser)
				assert.Equal(t, "jti-1", gotJTI)
				assert.Equal(t, exp, gotExp)
			} else {
				assert.True(t, gotUser.IsNil())
			}
		})
	}
}
