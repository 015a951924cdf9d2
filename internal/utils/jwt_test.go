package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionToken(t *testing.T) {
	session, err := NewSessionToken("test-secret", 42, RoleStudent, 168)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(168*time.Hour), session.Exp, time.Minute)

	tok, err := jwt.Parse(session.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.EqualValues(t, 42, claims["sub"])
	assert.Equal(t, RoleStudent, claims["role"])
}

func TestNewSessionToken_WrongSecretRejected(t *testing.T) {
	session, err := NewSessionToken("right-secret", 1, RoleAdmin, 1)
	require.NoError(t, err)

	_, err = jwt.Parse(session.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	assert.Error(t, err)
}
