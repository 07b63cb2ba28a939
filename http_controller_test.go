package auth_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/boardkit/auth"
	"github.com/boardkit/auth/middleware/jwtware"
)

type controllerFixture struct {
	app    *fiber.App
	auther *MockAuthenticator
	store  *MockAccountStore
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()

	f := &controllerFixture{
		app:    fiber.New(),
		auther: new(MockAuthenticator),
		store:  new(MockAccountStore),
	}

	auth.RegisterAuthRoutes(f.app,
		auth.WithAuthenticator(f.auther),
		auth.WithAccountStore(f.store),
	)

	return f
}

func (f *controllerFixture) post(t *testing.T, path string, payload any) (*http.Response, auth.SignInResponseBody) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	res, err := f.app.Test(req)
	require.NoError(t, err)

	return res, decodeEnvelope(t, res)
}

func decodeEnvelope(t *testing.T, res *http.Response) auth.SignInResponseBody {
	t.Helper()

	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var envelope auth.SignInResponseBody
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope
}

func TestSignUpEndpointSuccess(t *testing.T) {
	f := newControllerFixture(t)
	f.auther.On("SignUp", mock.Anything, "walter@example.com", "walter", "correct-horse-1").Return(nil)

	res, envelope := f.post(t, "/api/v1/auth/sign-up", auth.SignUpRequest{
		Email:    "walter@example.com",
		Password: "correct-horse-1",
		Nickname: "walter",
	})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, auth.CodeSuccess, envelope.Code)
	f.auther.AssertExpectations(t)
}

func TestSignUpEndpointValidation(t *testing.T) {
	testCases := []struct {
		name    string
		payload auth.SignUpRequest
	}{
		{"bad email", auth.SignUpRequest{Email: "not-an-email", Password: "correct-horse-1", Nickname: "walter"}},
		{"short password", auth.SignUpRequest{Email: "walter@example.com", Password: "short", Nickname: "walter"}},
		{"long password", auth.SignUpRequest{Email: "walter@example.com", Password: "far-far-far-too-long-password", Nickname: "walter"}},
		{"missing nickname", auth.SignUpRequest{Email: "walter@example.com", Password: "correct-horse-1"}},
		{"empty payload", auth.SignUpRequest{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newControllerFixture(t)

			res, envelope := f.post(t, "/api/v1/auth/sign-up", tc.payload)

			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			assert.Equal(t, auth.CodeValidationFailed, envelope.Code)
			f.auther.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSignUpEndpointConflicts(t *testing.T) {
	testCases := []struct {
		name     string
		outcome  error
		wantCode string
	}{
		{"duplicate email", auth.ErrDuplicateEmail, auth.CodeDuplicateEmail},
		{"duplicate nickname", auth.ErrDuplicateNickname, auth.CodeDuplicateNickname},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newControllerFixture(t)
			f.auther.On("SignUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tc.outcome)

			res, envelope := f.post(t, "/api/v1/auth/sign-up", auth.SignUpRequest{
				Email:    "walter@example.com",
				Password: "correct-horse-1",
				Nickname: "walter",
			})

			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			assert.Equal(t, tc.wantCode, envelope.Code)
		})
	}
}

func TestSignUpEndpointStorageFault(t *testing.T) {
	f := newControllerFixture(t)
	f.auther.On("SignUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(auth.ErrStorage)

	res, envelope := f.post(t, "/api/v1/auth/sign-up", auth.SignUpRequest{
		Email:    "walter@example.com",
		Password: "correct-horse-1",
		Nickname: "walter",
	})

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, auth.CodeDatabaseError, envelope.Code)
}

func TestSignInEndpointSuccess(t *testing.T) {
	f := newControllerFixture(t)
	f.auther.On("SignIn", mock.Anything, "walter@example.com", "correct-horse-1").Return("issued-token", nil)

	res, envelope := f.post(t, "/api/v1/auth/sign-in", auth.SignInRequest{
		Email:    "walter@example.com",
		Password: "correct-horse-1",
	})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, auth.CodeSuccess, envelope.Code)
	assert.Equal(t, "issued-token", envelope.Token)
	assert.Equal(t, 3600, envelope.ExpirationTime)
}

func TestSignInEndpointRejected(t *testing.T) {
	f := newControllerFixture(t)
	f.auther.On("SignIn", mock.Anything, mock.Anything, mock.Anything).Return("", auth.ErrInvalidCredentials)

	res, envelope := f.post(t, "/api/v1/auth/sign-in", auth.SignInRequest{
		Email:    "walter@example.com",
		Password: "wrong-password-9",
	})

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, auth.CodeSignInFailed, envelope.Code)
	assert.Empty(t, envelope.Token)
}

func TestSignInEndpointValidation(t *testing.T) {
	f := newControllerFixture(t)

	res, envelope := f.post(t, "/api/v1/auth/sign-in", auth.SignInRequest{Email: "walter@example.com"})

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, auth.CodeValidationFailed, envelope.Code)
}

func TestGoogleEndpointSuccess(t *testing.T) {
	f := newControllerFixture(t)
	f.auther.On("FederatedSignIn", mock.Anything, "google-id-token").Return("issued-token", nil)

	res, envelope := f.post(t, "/api/v1/auth/google", auth.GoogleAuthRequest{IDToken: "google-id-token"})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, auth.CodeSuccess, envelope.Code)
	assert.Equal(t, "issued-token", envelope.Token)
}

func TestGoogleEndpointOutcomes(t *testing.T) {
	testCases := []struct {
		name       string
		outcome    error
		wantStatus int
		wantCode   string
	}{
		{"invalid token", auth.ErrInvalidCredentials, http.StatusUnauthorized, auth.CodeSignInFailed},
		{"local account conflict", auth.ErrDuplicateEmail, http.StatusBadRequest, auth.CodeDuplicateEmail},
		{"storage fault", auth.ErrStorage, http.StatusInternalServerError, auth.CodeDatabaseError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newControllerFixture(t)
			f.auther.On("FederatedSignIn", mock.Anything, mock.Anything).Return("", tc.outcome)

			res, envelope := f.post(t, "/api/v1/auth/google", auth.GoogleAuthRequest{IDToken: "some-token"})

			assert.Equal(t, tc.wantStatus, res.StatusCode)
			assert.Equal(t, tc.wantCode, envelope.Code)
		})
	}
}

func TestGoogleEndpointValidation(t *testing.T) {
	f := newControllerFixture(t)

	res, envelope := f.post(t, "/api/v1/auth/google", auth.GoogleAuthRequest{})

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, auth.CodeValidationFailed, envelope.Code)
	f.auther.AssertNotCalled(t, "FederatedSignIn", mock.Anything, mock.Anything)
}

// full stack: middleware validates the bearer token, the user endpoint
// resolves the subject against the store
func TestGetSignInUser(t *testing.T) {
	tokenService := auth.NewTokenService(testSigningKey, 1, "boardkit-test", nil)

	newApp := func(store *MockAccountStore) *fiber.App {
		app := fiber.New()
		app.Use(jwtware.New(jwtware.Config{
			Validator:      tokenService,
			ExemptPrefixes: []string{"/api/v1/auth"},
		}))
		auth.RegisterAuthRoutes(app,
			auth.WithAuthenticator(new(MockAuthenticator)),
			auth.WithAccountStore(store),
		)
		return app
	}

	get := func(t *testing.T, app *fiber.App, authorization string) (*http.Response, map[string]any) {
		t.Helper()
		req := httptest.NewRequest(fiber.MethodGet, "/api/v1/user/me", nil)
		if authorization != "" {
			req.Header.Set(fiber.HeaderAuthorization, authorization)
		}
		res, err := app.Test(req)
		require.NoError(t, err)
		defer res.Body.Close()

		var payload map[string]any
		require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
		return res, payload
	}

	t.Run("anonymous request is rejected", func(t *testing.T) {
		res, payload := get(t, newApp(new(MockAccountStore)), "")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, auth.CodeAuthFailed, payload["code"])
	})

	t.Run("token subject no longer exists", func(t *testing.T) {
		store := new(MockAccountStore)
		store.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.NewRecordNotFound())

		token, err := tokenService.Create("ghost@example.com")
		require.NoError(t, err)

		res, payload := get(t, newApp(store), "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, auth.CodeNotExistUser, payload["code"])
	})

	t.Run("signed-in user resolves", func(t *testing.T) {
		store := new(MockAccountStore)
		store.On("GetByEmail", mock.Anything, "walter@example.com").Return(&auth.Account{
			Email:        "walter@example.com",
			Nickname:     "walter",
			ProfileImage: "https://example.com/walter.png",
			LoginOrigin:  auth.OriginLocal,
		}, nil)

		token, err := tokenService.Create("walter@example.com")
		require.NoError(t, err)

		res, payload := get(t, newApp(store), "Bearer "+token)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, auth.CodeSuccess, payload["code"])
		assert.Equal(t, "walter@example.com", payload["email"])
		assert.Equal(t, "walter", payload["nickname"])
		assert.Equal(t, "https://example.com/walter.png", payload["profileImage"])
	})
}
