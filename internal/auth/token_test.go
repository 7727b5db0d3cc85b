package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Issue(42, "admin")
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Issue(1, "user")
	require.NoError(t, err)

	t.Run("чужой секрет", func(t *testing.T) {
		_, err := NewTokenManager("other", time.Hour).Parse(token)
		assert.Error(t, err)
	})

	t.Run("истекший", func(t *testing.T) {
		expired := NewTokenManager("secret", time.Hour)
		expired.nowFn = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := expired.Parse(token)
		assert.Error(t, err)
	})

	t.Run("мусор", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.Error(t, err)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("correct-horse", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))

	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("long-enough"))
}
