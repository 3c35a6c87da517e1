//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"fmt"
	"time"

	"presence-lab/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(username, hashedPassword, avatar string) (string, error)
	GetUserByUsername(username string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the account record as seen by the service layer. The presence
// core never touches it: identities reach the core post-authentication.
type User struct {
	ID           string
	Username     string
	Avatar       string
	PasswordHash string
	CreatedAt    time.Time
}

type diskUser struct {
	ID           string `cbor:"id"`
	Username     string `cbor:"username"`
	Avatar       string `cbor:"avatar"`
	PasswordHash string `cbor:"password_hash"`
	CreatedAt    int64  `cbor:"created_at"`
}

func userKey(username string) []byte {
	return []byte("user:" + username)
}

// CreateUser persists a new account and returns the generated user ID.
// The existence check and the insert run in one transaction, so two
// concurrent signups for the same username cannot both succeed.
func (u *UserRepository) CreateUser(username, hashedPassword, avatar string) (string, error) {
	newID := uuid.NewString()
	data, err := cbor.Marshal(diskUser{
		ID:           newID,
		Username:     username,
		Avatar:       avatar,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := userKey(username)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		return txn.Set(key, data)
	})
	return newID, err
}

func (u *UserRepository) GetUserByUsername(username string) (User, error) {
	var disk diskUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &disk)
		})
	})
	if err != nil {
		return User{}, err
	}
	return User{
		ID:           disk.ID,
		Username:     disk.Username,
		Avatar:       disk.Avatar,
		PasswordHash: disk.PasswordHash,
		CreatedAt:    time.Unix(disk.CreatedAt, 0).UTC(),
	}, nil
}
