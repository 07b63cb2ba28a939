package auth_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/boardkit/auth"
)

// MockAccountStore implements auth.AccountStore
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountStore) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	args := m.Called(ctx, nickname)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountStore) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	args := m.Called(ctx, email)
	if record := args.Get(0); record != nil {
		return record.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountStore) Save(ctx context.Context, record *auth.Account) (*auth.Account, error) {
	args := m.Called(ctx, record)
	if saved := args.Get(0); saved != nil {
		return saved.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockFederatedVerifier implements auth.FederatedVerifier
type MockFederatedVerifier struct {
	mock.Mock
}

func (m *MockFederatedVerifier) Verify(ctx context.Context, idToken string) (*auth.FederatedClaims, error) {
	args := m.Called(ctx, idToken)
	if claims := args.Get(0); claims != nil {
		return claims.(*auth.FederatedClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAuthenticator implements auth.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) SignUp(ctx context.Context, email, nickname, password string) error {
	args := m.Called(ctx, email, nickname, password)
	return args.Error(0)
}

func (m *MockAuthenticator) SignIn(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) FederatedSignIn(ctx context.Context, idToken string) (string, error) {
	args := m.Called(ctx, idToken)
	return args.String(0), args.Error(1)
}

type testConfig struct {
	signingKey      string
	tokenExpiration int
	exemptPrefixes  []string
	googleClientID  string
}

func (c testConfig) GetSigningKey() string { return c.signingKey }
func (c testConfig) GetTokenExpiration() int {
	if c.tokenExpiration == 0 {
		return 1
	}
	return c.tokenExpiration
}
func (c testConfig) GetIssuer() string           { return "boardkit-test" }
func (c testConfig) GetContextKey() string       { return "identity" }
func (c testConfig) GetAuthScheme() string       { return "Bearer" }
func (c testConfig) GetExemptPrefixes() []string { return c.exemptPrefixes }
func (c testConfig) GetGoogleClientID() string   { return c.googleClientID }
func (c testConfig) GetGoogleJWKSURL() string    { return "" }
