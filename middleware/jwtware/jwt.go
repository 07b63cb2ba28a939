// Package jwtware populates a request-scoped identity from a bearer
// token. It is deliberately optimistic: a missing, malformed, or expired
// token degrades the request to anonymous instead of rejecting it.
// Handlers that need a signed-in user must observe the absent identity
// and reject on their own.
package jwtware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/boardkit/auth"
)

const defaultContextKey = "identity"

// TokenValidator mirrors auth.TokenService.Validate.
type TokenValidator interface {
	Validate(raw string) (string, error)
}

type Config struct {
	// Validator is required for token validation
	Validator TokenValidator
	// ContextKey is the fiber locals key the identity is stored under.
	ContextKey string
	// AuthScheme is the expected Authorization scheme, "Bearer" by default.
	AuthScheme string
	// ExemptPrefixes lists path prefixes that skip token inspection
	// entirely, even when a header is present.
	ExemptPrefixes []string
}

func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)

	return func(ctx *fiber.Ctx) error {
		if isExempt(ctx.Path(), cfg.ExemptPrefixes) {
			return ctx.Next()
		}

		raw, ok := tokenFromHeader(ctx.Get(fiber.HeaderAuthorization), cfg.AuthScheme)
		if !ok {
			return ctx.Next()
		}

		subject, err := cfg.Validator.Validate(raw)
		if err != nil {
			return ctx.Next()
		}

		identity := auth.NewRequestIdentity(subject)
		ctx.Locals(cfg.ContextKey, identity)
		ctx.SetUserContext(auth.WithIdentity(ctx.UserContext(), identity))

		return ctx.Next()
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Validator == nil {
		panic("AUTH: JWT middleware configuration: Validator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = defaultContextKey
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

// IdentityFromLocals reads the identity the middleware stored for this
// request, if any.
func IdentityFromLocals(ctx *fiber.Ctx, key string) (*auth.RequestIdentity, bool) {
	if key == "" {
		key = defaultContextKey
	}

	identity, ok := ctx.Locals(key).(*auth.RequestIdentity)
	if !ok || identity == nil {
		return nil, false
	}

	return identity, true
}

func isExempt(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// tokenFromHeader extracts the bearer token from an Authorization header
// value. Anything that is not "<scheme> <token>" reads as no token.
func tokenFromHeader(header, authScheme string) (string, bool) {
	if header == "" {
		return "", false
	}

	l := len(authScheme)
	if len(header) <= l+1 || !strings.EqualFold(header[:l], authScheme) || header[l] != ' ' {
		return "", false
	}

	token := strings.TrimSpace(header[l+1:])
	if token == "" {
		return "", false
	}

	return token, true
}
