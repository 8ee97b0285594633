package auth_test

import (
	"testing"

	"github.com/JamieOgun/PixelPanel/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIdentity struct {
	id   string
	role string
}

func (s stubIdentity) ID() string       { return s.id }
func (s stubIdentity) Username() string { return "inker" }
func (s stubIdentity) Email() string    { return "inker@example.com" }
func (s stubIdentity) Role() string     { return s.role }

func TestTokenServiceGenerateAndValidate(t *testing.T) {
	signingKey := []byte("panel-signing-key")
	audience := jwt.ClaimStrings{"pixelpanel"}
	service := auth.NewTokenService(signingKey, 24, "pixelpanel", audience, testLogger{})

	tokenString, err := service.Generate(stubIdentity{id: "user-42", role: auth.RoleMember})
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := service.Validate(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Subject())
	assert.Equal(t, "user-42", claims.UserID())
	assert.Equal(t, auth.RoleMember, claims.Role())
	assert.True(t, claims.Expires().After(claims.IssuedAt()))
}

func TestTokenServiceRejectsExpiredTokens(t *testing.T) {
	signingKey := []byte("panel-signing-key")
	audience := jwt.ClaimStrings{"pixelpanel"}

	// negative expiration puts the token past its window at mint time
	expired := auth.NewTokenService(signingKey, -1, "pixelpanel", audience, testLogger{})
	tokenString, err := expired.Generate(stubIdentity{id: "user-42", role: auth.RoleMember})
	require.NoError(t, err)

	_, err = expired.Validate(tokenString)
	require.Error(t, err)
	assert.True(t, auth.IsTokenExpiredError(err))
}

func TestTokenServiceRejectsWrongSigningKey(t *testing.T) {
	audience := jwt.ClaimStrings{"pixelpanel"}
	minter := auth.NewTokenService([]byte("key-one"), 24, "pixelpanel", audience, testLogger{})
	checker := auth.NewTokenService([]byte("key-two"), 24, "pixelpanel", audience, testLogger{})

	tokenString, err := minter.Generate(stubIdentity{id: "user-42", role: auth.RoleMember})
	require.NoError(t, err)

	_, err = checker.Validate(tokenString)
	require.Error(t, err)
	assert.True(t, auth.IsMalformedError(err))
}

func TestTokenServiceEnforcesIssuer(t *testing.T) {
	signingKey := []byte("panel-signing-key")
	audience := jwt.ClaimStrings{"pixelpanel"}
	minter := auth.NewTokenService(signingKey, 24, "someone-else", audience, testLogger{})
	checker := auth.NewTokenService(signingKey, 24, "pixelpanel", audience, testLogger{})

	tokenString, err := minter.Generate(stubIdentity{id: "user-42", role: auth.RoleMember})
	require.NoError(t, err)

	_, err = checker.Validate(tokenString)
	assert.Error(t, err)
}

func TestTokenServiceRejectsGarbage(t *testing.T) {
	service := auth.NewTokenService([]byte("panel-signing-key"), 24, "pixelpanel", nil, testLogger{})

	_, err := service.Validate("not-a-jwt")
	require.Error(t, err)
	assert.True(t, auth.IsMalformedError(err))
}
