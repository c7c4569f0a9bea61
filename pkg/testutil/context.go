package testutil

import (
	"net/http"
	"time"

	"eureka/pkg/domain"
	"eureka/pkg/requestcontext"
)

// AsUser marks the request as authenticated by userID, the way RequireAuth
// would after validating a bearer token.
func AsUser(req *http.Request, userID domain.UserID) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithToken(ctx, "test-jti", time.Now().Add(time.Hour))
	return req.WithContext(ctx)
}

// AtTime pins the request-scoped clock.
func AtTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
