package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeDuplicateEmail    = "auth_duplicate_email"
	TextCodeDuplicateNickname = "auth_duplicate_nickname"
	TextCodeInvalidCreds      = "auth_invalid_credentials"
	TextCodeStorageError      = "auth_storage_error"
	TextCodeTokenExpired      = "auth_token_expired"
	TextCodeTokenMalformed    = "auth_token_malformed"
	TextCodeFederatedInvalid  = "auth_federated_token_invalid"
)

// ErrDuplicateEmail is returned when an email is already registered.
var ErrDuplicateEmail = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(errors.CodeConflict)

// ErrDuplicateNickname is returned when a nickname is already taken.
var ErrDuplicateNickname = errors.New("nickname already taken", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateNickname).
	WithCode(errors.CodeConflict)

// ErrInvalidCredentials is the single generic sign-in failure. A missing
// account, a federated account without a password, and a wrong password
// all collapse here so callers cannot enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrStorage is the opaque wrapper for unexpected persistence faults.
var ErrStorage = errors.New("storage error", errors.CategoryInternal).
	WithTextCode(TextCodeStorageError).
	WithCode(errors.CodeInternal)

// ErrTokenExpired is returned for session tokens past their TTL.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers every other session token failure: garbage
// input, signature mismatch, or an unexpected signing method.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidFederatedToken is the single outcome for a federated ID token
// that fails verification. Callers are not told which check failed.
var ErrInvalidFederatedToken = errors.New("invalid federated identity token", errors.CategoryAuth).
	WithTextCode(TextCodeFederatedInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is the bcrypt mismatch sentinel.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

func hasTextCode(err error, code string) bool {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

// IsDuplicateEmail reports whether err is the duplicate-email outcome.
func IsDuplicateEmail(err error) bool {
	return hasTextCode(err, TextCodeDuplicateEmail)
}

// IsDuplicateNickname reports whether err is the duplicate-nickname outcome.
func IsDuplicateNickname(err error) bool {
	return hasTextCode(err, TextCodeDuplicateNickname)
}

// IsInvalidCredentials reports whether err is the generic sign-in failure.
func IsInvalidCredentials(err error) bool {
	return hasTextCode(err, TextCodeInvalidCreds) || hasTextCode(err, TextCodeFederatedInvalid)
}

// IsStorageError reports whether err is the opaque storage outcome.
func IsStorageError(err error) bool {
	return hasTextCode(err, TextCodeStorageError)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return hasTextCode(err, TextCodeTokenExpired) ||
		strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return hasTextCode(err, TextCodeTokenMalformed) ||
		strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
