package jwttoken

import (
	"testing"
	"time"

	dErrors "landledger/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landledger/pkg/domain"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)
var callerAddr = domain.Address("0xabc123")
var expiresIn = time.Hour

func Test_GenerateAccessToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(callerAddr, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, callerAddr.String(), claims.Address)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(callerAddr, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func Test_ExtractAddress(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(callerAddr, expiresIn)
	require.NoError(t, err)

	addr, err := jwtService.ExtractAddress(token)
	require.NoError(t, err)
	assert.Equal(t, callerAddr, addr)
}

func Test_ExtractAddress_EmptyClaim(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(domain.ZeroAddress, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ExtractAddress(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims"))
}
