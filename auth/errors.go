package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrMismatchedHashAndPassword is returned for any credential mismatch, we
// never tell the caller which half was wrong
var ErrMismatchedHashAndPassword = errors.New("invalid credentials", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrTooManyLoginAttempts is returned when the cool down window is active
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOO_MANY_ATTEMPTS")

// ErrEmailNotConfirmed blocks login until the confirmation link was followed
var ErrEmailNotConfirmed = errors.New("email not confirmed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("EMAIL_NOT_CONFIRMED")

// ErrUserAlreadyRegistered is the conflict we surface for duplicate signups
var ErrUserAlreadyRegistered = errors.New("User already registered", errors.CategoryConflict).
	WithTextCode("USER_EXISTS")

// TextCodeTokenExpired is the machine readable code for expired tokens
const TextCodeTokenExpired = "TOKEN_EXPIRED"

// ErrTokenExpired is returned for tokens outside their validity window
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned when we cannot parse a token at all
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrNoEmptyString guards hashing empty passwords
var ErrNoEmptyString = errors.New("password can not be an empty string", errors.CategoryValidation)

// ErrUnableToFindSession is the error when our reequest has no cookie
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode JWT from session cookie
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims", errors.CategoryAuth)

// ErrUnableToParseData parse error
var ErrUnableToParseData = errors.New("unable to parse data", errors.CategoryInternal)

// ErrVerificationNotFound is returned for unknown confirmation tokens
var ErrVerificationNotFound = errors.New("confirmation link is not valid", errors.CategoryAuth).
	WithTextCode("VERIFICATION_NOT_FOUND")

// ErrVerificationExpired is returned for confirmation tokens past their TTL
var ErrVerificationExpired = errors.New("confirmation link has expired", errors.CategoryAuth).
	WithTextCode("VERIFICATION_EXPIRED")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsDuplicateRecordError loosely detects unique constraint violations across
// the sqlite and postgres drivers we support.
func IsDuplicateRecordError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "already registered")
}
