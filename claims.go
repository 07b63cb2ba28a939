package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is the payload of an issued session token: subject email,
// issue time, expiry, and a token ID. Nothing else is encoded; the token
// is self contained and never persisted.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SubjectEmail returns the account email the token was issued for.
func (c *SessionClaims) SubjectEmail() string {
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued-at time
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
