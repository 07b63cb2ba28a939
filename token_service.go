package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// DefaultTokenExpiration is the fixed session TTL in hours. There is no
// revocation or refresh; expiry is the only way a token dies.
const DefaultTokenExpiration = 1

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	logger          Logger
	timeFn          func() time.Time
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, tokenExpiration int, issuer string, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	if tokenExpiration <= 0 {
		tokenExpiration = DefaultTokenExpiration
	}
	return &TokenServiceImpl{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		logger:          logger,
		timeFn:          time.Now,
	}
}

// WithTimeFunc overrides the clock used for issuance and expiry checks.
func (ts *TokenServiceImpl) WithTimeFunc(fn func() time.Time) *TokenServiceImpl {
	if fn != nil {
		ts.timeFn = fn
	}
	return ts
}

// Create issues a signed session token for the given account email.
func (ts *TokenServiceImpl) Create(subjectEmail string) (string, error) {
	if subjectEmail == "" {
		return "", errors.New("subject email must not be empty", errors.CategoryBadInput)
	}

	now := ts.timeFn()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   subjectEmail,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.tokenExpiration) * time.Hour)),
		},
	}

	ensureTokenID(&claims.RegisteredClaims)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign session token")
	}

	return signedString, nil
}

// Validate parses and verifies a raw token string, returning the subject
// email. It never panics and never surfaces a parser fault: any garbage,
// signature mismatch, or expired token maps to the closed sentinels.
func (ts *TokenServiceImpl) Validate(raw string) (string, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.timeFn),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenMalformed
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SubjectEmail() == "" {
		ts.logger.Error("TokenService validate could not decode claims")
		return "", ErrTokenMalformed
	}

	return claims.SubjectEmail(), nil
}

var _ TokenService = (*TokenServiceImpl)(nil)
