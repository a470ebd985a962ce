package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenAndParseToken(t *testing.T) {
	secretKey := "bf284d03-ba65-42d4-a9fe-0d2fbfe61060"

	aToken, rToken, err := GenToken("alice", []string{"admin"}, []byte(secretKey), time.Hour, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, aToken)
	require.NotEmpty(t, rToken)

	claims, err := ParseToken(aToken, secretKey)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Name)
	assert.Equal(t, []string{"admin"}, claims.Roles)
}

func TestParseTokenWrongKey(t *testing.T) {
	aToken, _, err := GenToken("alice", nil, []byte("right-key"), time.Hour, 24*time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(aToken, "wrong-key")
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	secretKey := "bf284d03-ba65-42d4-a9fe-0d2fbfe61060"

	_, rToken, err := GenToken("bob", nil, []byte(secretKey), time.Hour, 24*time.Hour)
	require.NoError(t, err)

	pair, err := RefreshToken(secretKey, time.Hour, 24*time.Hour, rToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair["accessToken"])
	assert.NotEmpty(t, pair["refreshToken"])

	claims, err := ParseToken(pair["accessToken"], secretKey)
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.Name)
}

func TestRefreshTokenKeepsRoles(t *testing.T) {
	secretKey := "bf284d03-ba65-42d4-a9fe-0d2fbfe61060"

	_, rToken, err := GenToken("eve", []string{"devs"}, []byte(secretKey), time.Hour, 24*time.Hour)
	require.NoError(t, err)

	pair, err := RefreshToken(secretKey, time.Hour, 24*time.Hour, rToken)
	require.NoError(t, err)

	// Roles carry membership; they must survive the refresh round-trip.
	claims, err := ParseToken(pair["accessToken"], secretKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"devs"}, claims.Roles)

	rClaims, err := ParseToken(pair["refreshToken"], secretKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"devs"}, rClaims.Roles)
}
