package auth

import (
	"testing"
	"time"

	"github.com/chris/store-payments/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens(t *testing.T) {
	user := &models.User{Id: "user-1", Email: "a@example.com"}

	t.Run("Round Trip", func(t *testing.T) {
		tokens := NewTokens("secret", time.Hour)

		token, err := tokens.Issue(user)
		require.NoError(t, err)

		userID, err := tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("Expired", func(t *testing.T) {
		tokens := NewTokens("secret", time.Minute)
		tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := tokens.Issue(user)
		require.NoError(t, err)

		tokens.now = time.Now
		_, err = tokens.Verify(token)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		token, err := NewTokens("secret", time.Hour).Issue(user)
		require.NoError(t, err)

		_, err = NewTokens("other", time.Hour).Verify(token)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := NewTokens("secret", time.Hour).Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
