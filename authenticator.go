package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/goliatone/go-errors"
)

// MaxNicknameAttempts bounds the federated provisioning retry loop. The
// store's uniqueness constraint drives retries; this keeps a pathological
// collision storm from looping forever.
var MaxNicknameAttempts = 50

type Auther struct {
	store        AccountStore
	tokenService TokenService
	federated    FederatedVerifier
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store AccountStore, federated FederatedVerifier, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		defLogger{},
	)

	return &Auther{
		store:        store,
		federated:    federated,
		tokenService: tokenService,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// WithTokenService overrides the token service, mostly for tests that
// need a fixed clock.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// SignUp registers a password-owned account. Outcomes are limited to
// ErrDuplicateEmail, ErrDuplicateNickname, and ErrStorage.
func (s *Auther) SignUp(ctx context.Context, email, nickname, password string) error {
	existedEmail, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return s.storageFailure(ctx, ActivityEventSignUpFailure, email, err, "sign up email lookup failed")
	}
	if existedEmail {
		s.emitAuthEvent(ctx, ActivityEventSignUpFailure, email, map[string]any{"reason": "duplicate_email"})
		return ErrDuplicateEmail
	}

	existedNickname, err := s.store.ExistsByNickname(ctx, nickname)
	if err != nil {
		return s.storageFailure(ctx, ActivityEventSignUpFailure, email, err, "sign up nickname lookup failed")
	}
	if existedNickname {
		s.emitAuthEvent(ctx, ActivityEventSignUpFailure, email, map[string]any{"reason": "duplicate_nickname"})
		return ErrDuplicateNickname
	}

	hash, err := HashPassword(password)
	if err != nil {
		s.logger.Error("SignUp failed to hash password: %v", err)
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	if _, err := s.store.Save(ctx, NewLocalAccount(email, nickname, hash)); err != nil {
		// The pre-checks race with concurrent sign-ups; the store's
		// constraints are the source of truth.
		switch UniqueViolationColumn(err) {
		case "email":
			s.emitAuthEvent(ctx, ActivityEventSignUpFailure, email, map[string]any{"reason": "duplicate_email"})
			return ErrDuplicateEmail
		case "nickname":
			s.emitAuthEvent(ctx, ActivityEventSignUpFailure, email, map[string]any{"reason": "duplicate_nickname"})
			return ErrDuplicateNickname
		}
		return s.storageFailure(ctx, ActivityEventSignUpFailure, email, err, "sign up persist failed")
	}

	s.emitAuthEvent(ctx, ActivityEventSignUpSuccess, email, nil)
	return nil
}

// SignIn verifies a password credential and issues a session token. A
// missing account, an account without a password hash, and a wrong
// password are indistinguishable to the caller.
func (s *Auther) SignIn(ctx context.Context, email, password string) (string, error) {
	account, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if IsRecordNotFound(err) {
			s.emitAuthEvent(ctx, ActivityEventSignInFailure, email, nil)
			return "", ErrInvalidCredentials
		}
		return "", s.storageFailure(ctx, ActivityEventSignInFailure, email, err, "sign in lookup failed")
	}

	if account.PasswordHash == "" {
		s.emitAuthEvent(ctx, ActivityEventSignInFailure, email, nil)
		return "", ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		s.emitAuthEvent(ctx, ActivityEventSignInFailure, email, nil)
		return "", ErrInvalidCredentials
	}

	token, err := s.tokenService.Create(account.Email)
	if err != nil {
		s.logger.Error("SignIn token issuance failed: %v", err)
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventSignInSuccess, email, nil)
	return token, nil
}

// FederatedSignIn verifies an externally issued identity token, resolving
// or provisioning the account it asserts, and issues a session token.
func (s *Auther) FederatedSignIn(ctx context.Context, idToken string) (string, error) {
	claims, err := s.federated.Verify(ctx, idToken)
	if err != nil {
		s.logger.Info("FederatedSignIn token rejected")
		s.emitAuthEvent(ctx, ActivityEventFederatedFailure, "", map[string]any{"reason": "invalid_token"})
		return "", ErrInvalidCredentials
	}

	account, err := s.store.GetByEmail(ctx, claims.Email)
	switch {
	case err == nil:
		// Federated sign-in never takes over a password-owned account.
		if !account.IsFederated() {
			s.emitAuthEvent(ctx, ActivityEventFederatedFailure, claims.Email, map[string]any{"reason": "duplicate_email"})
			return "", ErrDuplicateEmail
		}
	case IsRecordNotFound(err):
		account, err = s.provisionFederatedAccount(ctx, claims)
		if err != nil {
			return "", err
		}
	default:
		return "", s.storageFailure(ctx, ActivityEventFederatedFailure, claims.Email, err, "federated sign in lookup failed")
	}

	token, err := s.tokenService.Create(account.Email)
	if err != nil {
		s.logger.Error("FederatedSignIn token issuance failed: %v", err)
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventFederatedSuccess, account.Email, nil)
	return token, nil
}

// provisionFederatedAccount creates an account for a first-time federated
// sign-in. Nickname candidates start at the claimed display name and take
// increasing integer suffixes. Candidate reads are only a fast path; the
// store's uniqueness constraint decides, and an explicit conflict signal
// advances the loop.
func (s *Auther) provisionFederatedAccount(ctx context.Context, claims *FederatedClaims) (*Account, error) {
	base := claims.Name
	if base == "" {
		base = FallbackNickname
	}

	nickname := base
	suffix := 0

	for attempt := 0; attempt < MaxNicknameAttempts; attempt++ {
		taken, err := s.store.ExistsByNickname(ctx, nickname)
		if err != nil {
			return nil, s.storageFailure(ctx, ActivityEventFederatedFailure, claims.Email, err, "federated nickname lookup failed")
		}
		if taken {
			suffix++
			nickname = base + strconv.Itoa(suffix)
			continue
		}

		account, err := s.store.Save(ctx, NewFederatedAccount(claims.Email, nickname, claims.Picture))
		if err == nil {
			s.emitAuthEvent(ctx, ActivityEventFederatedProvisioned, claims.Email, map[string]any{"nickname": nickname})
			return account, nil
		}

		if IsUniqueViolation(err) {
			if UniqueViolationColumn(err) == "email" {
				// A concurrent federated sign-in for the same email won
				// the race; resolve against its record.
				existing, lookupErr := s.store.GetByEmail(ctx, claims.Email)
				if lookupErr != nil {
					return nil, s.storageFailure(ctx, ActivityEventFederatedFailure, claims.Email, lookupErr, "federated conflict lookup failed")
				}
				if !existing.IsFederated() {
					s.emitAuthEvent(ctx, ActivityEventFederatedFailure, claims.Email, map[string]any{"reason": "duplicate_email"})
					return nil, ErrDuplicateEmail
				}
				return existing, nil
			}

			suffix++
			nickname = base + strconv.Itoa(suffix)
			continue
		}

		return nil, s.storageFailure(ctx, ActivityEventFederatedFailure, claims.Email, err, "federated provisioning failed")
	}

	return nil, s.storageFailure(ctx, ActivityEventFederatedFailure, claims.Email,
		errors.New("nickname retry budget exhausted", errors.CategoryConflict),
		"federated provisioning could not find a free nickname")
}

func (s *Auther) storageFailure(ctx context.Context, eventType ActivityEventType, subject string, err error, msg string) error {
	s.logger.Error("%s: %v", msg, err)
	s.emitAuthEvent(ctx, eventType, subject, map[string]any{"reason": "storage"})
	return errors.Wrap(err, errors.CategoryInternal, msg).
		WithTextCode(TextCodeStorageError).
		WithCode(errors.CodeInternal)
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, subject string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Subject:   subject,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Error("activity sink record error: %v", err)
	}
}

var _ Authenticator = (*Auther)(nil)
