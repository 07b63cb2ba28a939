// Package google verifies Google-issued ID tokens against Google's
// published signing keys. Every failure mode collapses into a single
// invalid outcome; callers never learn which check failed.
package google

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/boardkit/auth"
)

// DefaultJWKSURL is Google's published JWK Set endpoint.
const DefaultJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// Google signs ID tokens with either issuer form.
var acceptedIssuers = []string{
	"accounts.google.com",
	"https://accounts.google.com",
}

// Config holds Google ID token verification options.
type Config struct {
	// ClientID is the OAuth client the token audience must match.
	ClientID string
	// JWKSURL overrides the key endpoint, mostly for tests.
	JWKSURL string
	// HTTPClient fetches key material. The default carries a 10s timeout
	// so verification can never block indefinitely on the provider.
	HTTPClient *http.Client

	RefreshInterval time.Duration
	RefreshTimeout  time.Duration

	Logger auth.Logger
}

// Verifier validates Google ID tokens using a cached JWK Set with
// background refresh. A stale or unreachable key set rejects tokens; it
// never accepts an unverifiable one.
type Verifier struct {
	clientID string
	jwks     *keyfunc.JWKS
	logger   auth.Logger
	timeFn   func() time.Time
}

// NewVerifier fetches the provider's key set and returns a Verifier.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.ClientID == "" {
		return nil, auth.ErrInvalidFederatedToken
	}

	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = DefaultJWKSURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	refreshInterval := cfg.RefreshInterval
	if refreshInterval == 0 {
		refreshInterval = time.Hour
	}

	refreshTimeout := cfg.RefreshTimeout
	if refreshTimeout == 0 {
		refreshTimeout = 10 * time.Second
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Client: client,
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of Google JWK set: %s", err)
		},
		RefreshInterval:   refreshInterval,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    refreshTimeout,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, err
	}

	return newVerifier(cfg.ClientID, jwks, cfg.Logger), nil
}

// NewVerifierWithKeys builds a Verifier over a fixed key set, with no
// network access. Used in tests and offline setups.
func NewVerifierWithKeys(clientID string, givenKeys map[string]keyfunc.GivenKey) *Verifier {
	return newVerifier(clientID, keyfunc.NewGiven(givenKeys), nil)
}

func newVerifier(clientID string, jwks *keyfunc.JWKS, logger auth.Logger) *Verifier {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Verifier{
		clientID: clientID,
		jwks:     jwks,
		logger:   logger,
		timeFn:   time.Now,
	}
}

// WithTimeFunc overrides the clock used for expiry checks.
func (v *Verifier) WithTimeFunc(fn func() time.Time) *Verifier {
	if fn != nil {
		v.timeFn = fn
	}
	return v
}

// Close stops the background key refresh.
func (v *Verifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Verify implements auth.FederatedVerifier.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*auth.FederatedClaims, error) {
	if err := ctx.Err(); err != nil {
		return nil, auth.ErrInvalidFederatedToken
	}

	claims := &idTokenClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.clientID),
		jwt.WithTimeFunc(v.timeFn),
	)
	if err != nil || !token.Valid {
		v.logger.Debug("google id token rejected: %v", err)
		return nil, auth.ErrInvalidFederatedToken
	}

	if !issuerAccepted(claims.Issuer) {
		v.logger.Debug("google id token rejected: issuer %q", claims.Issuer)
		return nil, auth.ErrInvalidFederatedToken
	}

	if claims.Email == "" {
		return nil, auth.ErrInvalidFederatedToken
	}

	return &auth.FederatedClaims{
		Subject:       claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		Picture:       claims.Picture,
		EmailVerified: claims.EmailVerified,
	}, nil
}

func issuerAccepted(issuer string) bool {
	for _, accepted := range acceptedIssuers {
		if issuer == accepted {
			return true
		}
	}
	return false
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

var _ auth.FederatedVerifier = (*Verifier)(nil)
