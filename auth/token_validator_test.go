package auth_test

import (
	"errors"
	"testing"

	"github.com/JamieOgun/PixelPanel/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatorStub struct {
	calls  int
	claims auth.AuthClaims
	err    error
}

func (v *validatorStub) Validate(tokenString string) (auth.AuthClaims, error) {
	v.calls++
	return v.claims, v.err
}

func TestMultiTokenValidator_UsesFirstSuccess(t *testing.T) {
	claims := &auth.JWTClaims{}
	primary := &validatorStub{claims: claims}
	secondary := &validatorStub{claims: &auth.JWTClaims{}}

	validator := auth.NewMultiTokenValidator(primary, secondary)

	result, err := validator.Validate("token")
	require.NoError(t, err)
	assert.Same(t, claims, result)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
}

func TestMultiTokenValidator_FallsThroughOnMalformed(t *testing.T) {
	claims := &auth.JWTClaims{}
	primary := &validatorStub{err: errors.New("token is malformed")}
	secondary := &validatorStub{claims: claims}

	validator := auth.NewMultiTokenValidator(primary, secondary)

	result, err := validator.Validate("token")
	require.NoError(t, err)
	assert.Same(t, claims, result)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestMultiTokenValidator_StopsOnNonMalformedError(t *testing.T) {
	primary := &validatorStub{err: auth.ErrTokenExpired}
	secondary := &validatorStub{claims: &auth.JWTClaims{}}

	validator := auth.NewMultiTokenValidator(primary, secondary)

	result, err := validator.Validate("token")
	assert.Nil(t, result)
	assert.True(t, auth.IsTokenExpiredError(err))
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
}

func TestMultiTokenValidator_AllMalformed(t *testing.T) {
	primary := &validatorStub{err: errors.New("token is malformed")}
	secondary := &validatorStub{err: errors.New("missing or malformed JWT")}

	validator := auth.NewMultiTokenValidator(primary, secondary)

	result, err := validator.Validate("token")
	assert.Nil(t, result)
	assert.True(t, auth.IsMalformedError(err))
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestMultiTokenValidator_SkipsNilValidators(t *testing.T) {
	validator := auth.NewMultiTokenValidator(nil, nil)

	result, err := validator.Validate("token")
	assert.Nil(t, result)
	assert.True(t, auth.IsMalformedError(err))
}

func TestTokenValidatorFunc(t *testing.T) {
	claims := &auth.JWTClaims{}
	fn := auth.TokenValidatorFunc(func(tokenString string) (auth.AuthClaims, error) {
		assert.Equal(t, "the-token", tokenString)
		return claims, nil
	})

	result, err := fn.Validate("the-token")
	require.NoError(t, err)
	assert.Same(t, claims, result)

	var nilFn auth.TokenValidatorFunc
	_, err = nilFn.Validate("the-token")
	assert.Error(t, err)
}

func TestNewJWKSValidatorRequiresURLs(t *testing.T) {
	_, err := auth.NewJWKSValidator()
	assert.Error(t, err)
}

func TestMiddlewareValidatorPassesClaimsThrough(t *testing.T) {
	claims := &auth.JWTClaims{UserRole: auth.RoleMember}
	inner := &validatorStub{claims: claims}

	mw := auth.MiddlewareValidator{Validator: inner}

	result, err := mw.Validate("token")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleMember, result.Role())

	empty := auth.MiddlewareValidator{}
	_, err = empty.Validate("token")
	assert.Error(t, err)
}
