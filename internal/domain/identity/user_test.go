package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUser(t *testing.T) *User {
	user, err := NewUser(uuid.New(), "Nimal.P", "correct-horse-9", "Nimal Perera")
	require.NoError(t, err)
	return user
}

func TestNewUser(t *testing.T) {
	t.Run("normalizes username", func(t *testing.T) {
		user := createTestUser(t)
		assert.Equal(t, "nimal.p", user.Username)
		assert.True(t, user.IsActive())
		assert.NotEqual(t, "correct-horse-9", user.PasswordHash)
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, err := NewUser(uuid.New(), "nimal", "short", "Nimal")
		assert.Error(t, err)
	})

	t.Run("bad username rejected", func(t *testing.T) {
		_, err := NewUser(uuid.New(), "a b", "long-enough-pass", "")
		assert.Error(t, err)
	})
}

func TestUser_VerifyPassword(t *testing.T) {
	t.Run("success resets counter and stamps login", func(t *testing.T) {
		user := createTestUser(t)
		user.FailedAttempts = 2

		require.NoError(t, user.VerifyPassword("correct-horse-9"))
		assert.Equal(t, 0, user.FailedAttempts)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("wrong password counts toward lockout", func(t *testing.T) {
		user := createTestUser(t)
		for i := 0; i < 5; i++ {
			assert.Error(t, user.VerifyPassword("wrong"))
		}
		assert.True(t, user.IsLocked())

		// Correct password rejected while locked
		assert.Error(t, user.VerifyPassword("correct-horse-9"))
	})

	t.Run("lockout expires", func(t *testing.T) {
		user := createTestUser(t)
		for i := 0; i < 5; i++ {
			_ = user.VerifyPassword("wrong")
		}
		past := time.Now().Add(-time.Minute)
		user.LockedUntil = &past

		require.NoError(t, user.VerifyPassword("correct-horse-9"))
		assert.True(t, user.IsActive())
	})

	t.Run("deactivated user rejected", func(t *testing.T) {
		user := createTestUser(t)
		user.Deactivate()
		assert.Error(t, user.VerifyPassword("correct-horse-9"))
	})
}

func TestUser_ChangePassword(t *testing.T) {
	user := createTestUser(t)

	assert.Error(t, user.ChangePassword("wrong", "new-password-10"))
	require.NoError(t, user.ChangePassword("correct-horse-9", "new-password-10"))
	require.NoError(t, user.VerifyPassword("new-password-10"))
	assert.Error(t, user.VerifyPassword("correct-horse-9"))
}

func TestUser_SetEmail(t *testing.T) {
	user := createTestUser(t)
	require.NoError(t, user.SetEmail("Nimal@Printers.LK"))
	assert.Equal(t, "nimal@printers.lk", user.Email)
	assert.Error(t, user.SetEmail("not-an-email"))
}
