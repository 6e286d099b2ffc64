package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "order-desk/pkg/errors"
)

func TestJWTService_ExpiresAt(t *testing.T) {
	s := NewJWTService()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	token, err := GenerateToken("secret", 7, exp)
	require.NoError(t, err)

	got, err := s.ExpiresAt(token)
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))
}

func TestJWTService_IsExpired(t *testing.T) {
	s := NewJWTService()
	now := time.Now()

	past, err := GenerateToken("secret", 1, now.Add(-10*time.Second))
	require.NoError(t, err)
	future, err := GenerateToken("secret", 1, now.Add(time.Minute))
	require.NoError(t, err)

	assert.True(t, s.IsExpired(past, now))
	assert.False(t, s.IsExpired(future, now))

	t.Run("ровно в момент exp токен истёк", func(t *testing.T) {
		exp := now.Add(time.Minute).Truncate(time.Second)
		tok, err := GenerateToken("secret", 1, exp)
		require.NoError(t, err)
		assert.True(t, s.IsExpired(tok, exp))
	})

	t.Run("мусор вместо токена", func(t *testing.T) {
		assert.True(t, s.IsExpired("not-a-jwt", now))
		_, err := s.ExpiresAt("not-a-jwt")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}
