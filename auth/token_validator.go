package auth

import (
	"log"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenValidator turns a raw token string into claims. The session
// middleware, the token service, and the JWKS validator all satisfy it.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc lets a plain function act as a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate implements TokenValidator.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrUnableToDecodeSession
	}
	return f(tokenString)
}

// MultiTokenValidator accepts tokens from more than one issuer, our own
// HS256 session tokens first and JWKS-verified external tokens after.
// A malformed result moves on to the next validator; any other failure
// (expired, revoked) is final.
type MultiTokenValidator struct {
	validators []TokenValidator
}

// NewMultiTokenValidator composes validators in priority order, skipping
// nil entries.
func NewMultiTokenValidator(validators ...TokenValidator) *MultiTokenValidator {
	kept := make([]TokenValidator, 0, len(validators))
	for _, v := range validators {
		if v != nil {
			kept = append(kept, v)
		}
	}
	return &MultiTokenValidator{validators: kept}
}

// Validate implements TokenValidator.
func (m *MultiTokenValidator) Validate(tokenString string) (AuthClaims, error) {
	var lastMalformed error

	for _, v := range m.validators {
		claims, err := v.Validate(tokenString)
		if err == nil {
			return claims, nil
		}
		if !IsMalformedError(err) {
			return nil, err
		}
		lastMalformed = err
	}

	if lastMalformed != nil {
		return nil, lastMalformed
	}
	return nil, ErrTokenMalformed
}

// jwksValidator verifies tokens signed by an external identity provider
// against its published JWK sets.
type jwksValidator struct {
	keyFunc jwt.Keyfunc
}

// NewJWKSValidator fetches the JWK sets at the given URLs and keeps them
// refreshed in the background. Tokens it cannot verify are reported as
// malformed so a MultiTokenValidator can try other validators first.
func NewJWKSValidator(urls ...string) (TokenValidator, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one JWK set URL is required", errors.CategoryBadInput)
	}

	opts := keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to refresh JWK set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}

	m := make(map[string]keyfunc.Options, len(urls))
	for _, url := range urls {
		m[url] = opts
	}

	multi, err := keyfunc.GetMultiple(m, keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to load JWK sets")
	}

	return &jwksValidator{keyFunc: multi.Keyfunc}, nil
}

// Validate implements TokenValidator. External tokens decode into the
// same JWTClaims shape our own tokens use, so role checks keep working.
func (v *jwksValidator) Validate(tokenString string) (AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, v.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
