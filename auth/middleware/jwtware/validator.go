package jwtware

import (
	"github.com/golang-jwt/jwt/v5"
)

// mapClaims adapts parsed jwt.MapClaims to the AuthClaims interface so
// externally issued tokens (JWKS, shared keys) behave like our own.
type mapClaims struct {
	claims jwt.MapClaims
}

var _ AuthClaims = mapClaims{}

func (m mapClaims) Subject() string {
	sub, _ := m.claims.GetSubject()
	return sub
}

func (m mapClaims) UserID() string {
	if uid, ok := m.claims["uid"].(string); ok && uid != "" {
		return uid
	}
	return m.Subject()
}

func (m mapClaims) Role() string {
	if role, ok := m.claims["role"].(string); ok {
		return role
	}
	return ""
}

func (m mapClaims) HasRole(role string) bool {
	return m.Role() == role
}

// IsAtLeast only has the flat role claim to go on for external tokens.
func (m mapClaims) IsAtLeast(minRole string) bool {
	return m.Role() == minRole
}

// KeyfuncValidator validates tokens by parsing them with a jwt.Keyfunc.
// It is the fallback used when no TokenValidator is configured, which is
// how JWKS-issued tokens from an external identity provider get verified.
type KeyfuncValidator struct {
	keyFunc jwt.Keyfunc
}

// NewKeyfuncValidator wraps a jwt.Keyfunc into a TokenValidator.
func NewKeyfuncValidator(kf jwt.Keyfunc) *KeyfuncValidator {
	return &KeyfuncValidator{keyFunc: kf}
}

// Validate satisfies the TokenValidator interface.
func (v *KeyfuncValidator) Validate(tokenString string) (AuthClaims, error) {
	if v.keyFunc == nil {
		return nil, ErrJWTMissingOrMalformed
	}

	token, err := jwt.Parse(tokenString, v.keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrJWTMissingOrMalformed
	}

	return mapClaims{claims: claims}, nil
}
