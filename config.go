package auth

import (
	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// EnvConfig is the environment-backed Config implementation consumed by
// the service binary.
type EnvConfig struct {
	SigningKey      string   `env:"AUTH_SIGNING_KEY,required"`
	TokenExpiration int      `env:"AUTH_TOKEN_EXPIRATION" envDefault:"1"`
	Issuer          string   `env:"AUTH_ISSUER" envDefault:"boardkit"`
	ContextKey      string   `env:"AUTH_CONTEXT_KEY" envDefault:"identity"`
	AuthScheme      string   `env:"AUTH_SCHEME" envDefault:"Bearer"`
	ExemptPrefixes  []string `env:"AUTH_EXEMPT_PREFIXES" envSeparator:"," envDefault:"/api/v1/auth,/api/v1/search,/api/v1/file"`
	GoogleClientID  string   `env:"AUTH_GOOGLE_CLIENT_ID"`
	GoogleJWKSURL   string   `env:"AUTH_GOOGLE_JWKS_URL"`
	ListenAddr      string   `env:"AUTH_LISTEN_ADDR" envDefault:":8080"`
	MetricsAddr     string   `env:"AUTH_METRICS_ADDR" envDefault:":9091"`
	DatabaseDSN     string   `env:"AUTH_DATABASE_DSN" envDefault:"file:boardauth.db?cache=shared"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse environment configuration")
	}
	return cfg, nil
}

func (c *EnvConfig) GetSigningKey() string { return c.SigningKey }
func (c *EnvConfig) GetTokenExpiration() int { return c.TokenExpiration }
func (c *EnvConfig) GetIssuer() string { return c.Issuer }
func (c *EnvConfig) GetContextKey() string { return c.ContextKey }
func (c *EnvConfig) GetAuthScheme() string { return c.AuthScheme }
func (c *EnvConfig) GetExemptPrefixes() []string { return c.ExemptPrefixes }
func (c *EnvConfig) GetGoogleClientID() string { return c.GoogleClientID }
func (c *EnvConfig) GetGoogleJWKSURL() string { return c.GoogleJWKSURL }

var _ Config = (*EnvConfig)(nil)
