package jwttoken

import (
	authmw "eureka/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *Claims) *authmw.JWTClaims {
	mc := &authmw.JWTClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		JTI:    claims.ID, // JWT ID for revocation tracking
	}
	if claims.ExpiresAt != nil {
		mc.ExpiresAt = claims.ExpiresAt.Time
	}
	return mc
}

// JWTServiceAdapter satisfies authmw.JWTValidator and the websocket gate's
// validator with the same service.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
