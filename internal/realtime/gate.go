package realtime

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"eureka/pkg/domain"
	authmw "eureka/pkg/platform/middleware/auth"
)

// TokenQueryParam carries the bearer token on the upgrade URL, since browsers
// cannot set headers on websocket handshakes.
const TokenQueryParam = "token"

// CloseReason texts sent with a policy-violation close.
const (
	ReasonTokenRequired = "Token required"
	ReasonInvalidToken  = "Invalid token"
	ReasonTokenRevoked  = "Token revoked"
)

// Rejection is why the Gate refused a connection. Code is the websocket
// close code sent to the client.
type Rejection struct {
	Code   int
	Reason string
	Err    error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return r.Reason + ": " + r.Err.Error()
	}
	return r.Reason
}

func (r *Rejection) Unwrap() error { return r.Err }

// Label is a low-cardinality metric label for the rejection.
func (r *Rejection) Label() string {
	switch r.Reason {
	case ReasonTokenRequired:
		return "missing_token"
	case ReasonInvalidToken:
		return "invalid_token"
	case ReasonTokenRevoked:
		return "revoked_token"
	default:
		return "internal"
	}
}

// Identity is the authenticated subject of a connection.
type Identity struct {
	UserID    domain.UserID
	TokenID   string
	ExpiresAt time.Time
}

// RevocationChecker reports whether a token id has been logged out.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// Gate verifies the credential presented on an upgrade request. It runs
// exactly once per connection.
type Gate struct {
	validator authmw.JWTValidator
	revoked   RevocationChecker
}

// NewGate builds a gate. revoked may be nil to skip revocation checks.
func NewGate(validator authmw.JWTValidator, revoked RevocationChecker) *Gate {
	return &Gate{validator: validator, revoked: revoked}
}

// Admit returns the identity behind the request's token, or a *Rejection.
func (g *Gate) Admit(r *http.Request) (Identity, error) {
	token := strings.TrimSpace(r.URL.Query().Get(TokenQueryParam))
	if token == "" {
		return Identity{}, &Rejection{Code: websocket.ClosePolicyViolation, Reason: ReasonTokenRequired}
	}

	claims, err := g.validator.ValidateToken(token)
	if err != nil {
		return Identity{}, &Rejection{Code: websocket.ClosePolicyViolation, Reason: ReasonInvalidToken, Err: err}
	}
	userID, err := domain.ParseUserID(claims.UserID)
	if err != nil {
		return Identity{}, &Rejection{Code: websocket.ClosePolicyViolation, Reason: ReasonInvalidToken, Err: err}
	}

	if g.revoked != nil {
		if claims.JTI == "" {
			return Identity{}, &Rejection{Code: websocket.ClosePolicyViolation, Reason: ReasonInvalidToken, Err: errors.New("token has no jti")}
		}
		revoked, err := g.revoked.IsTokenRevoked(r.Context(), claims.JTI)
		if err != nil {
			// not the client's fault; 1011 lets it retry
			return Identity{}, &Rejection{Code: websocket.CloseInternalServerErr, Reason: "Internal error", Err: err}
		}
		if revoked {
			return Identity{}, &Rejection{Code: websocket.ClosePolicyViolation, Reason: ReasonTokenRevoked}
		}
	}

	return Identity{UserID: userID, TokenID: claims.JTI, ExpiresAt: claims.ExpiresAt}, nil
}
