package repositories

import (
	"testing"

	apperrors "presence-lab/errors"

	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	id, err := repo.CreateUser("alice", "$argon2id$fakehash", "cat")
	req.NoError(err)
	req.NotEmpty(id)

	user, err := repo.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal(id, user.ID)
	req.Equal("alice", user.Username)
	req.Equal("cat", user.Avatar)
	req.Equal("$argon2id$fakehash", user.PasswordHash)
	req.False(user.CreatedAt.IsZero())
}

func TestUserRepository_DuplicateUsernameRejected(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	_, err := repo.CreateUser("alice", "hash-one", "cat")
	req.NoError(err)

	_, err = repo.CreateUser("alice", "hash-two", "dog")
	req.ErrorIs(err, apperrors.ErrUserAlreadyExists)

	// The original record is untouched by the rejected signup.
	user, err := repo.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal("hash-one", user.PasswordHash)
	req.Equal("cat", user.Avatar)
}

func TestUserRepository_GetUnknownUserFails(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	_, err := repo.GetUserByUsername("nobody")
	req.Error(err)
}
