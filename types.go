package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// TokenService issues and verifies the service's stateless session tokens.
type TokenService interface {
	Create(subjectEmail string) (string, error)
	Validate(raw string) (string, error)
}

// FederatedClaims are the values extracted from a verified external
// identity token. They live only long enough to provision an account.
type FederatedClaims struct {
	Subject       string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// FederatedVerifier validates an externally issued identity token against
// the provider's trust anchors and the configured audience.
type FederatedVerifier interface {
	Verify(ctx context.Context, idToken string) (*FederatedClaims, error)
}

// AccountStore is the narrow persistence surface the authentication flows
// consume. The concrete bun-backed implementation lives in repo_accounts.go.
type AccountStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Save(ctx context.Context, record *Account) (*Account, error)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	SignUp(ctx context.Context, email, nickname, password string) error
	SignIn(ctx context.Context, email, password string) (string, error)
	FederatedSignIn(ctx context.Context, idToken string) (string, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetContextKey() string
	GetAuthScheme() string
	GetExemptPrefixes() []string
	GetGoogleClientID() string
	GetGoogleJWKSURL() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
