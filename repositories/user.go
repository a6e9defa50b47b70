package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chatline/errors"
)

type IUserRepository interface {
	CreateUser(email, fullName, hashedPassword string) (User, error)
	GetUserByEmail(email string) (User, error)
	GetUserByID(id string) (User, error)
	UpdateProfilePicture(id, avatarURL string) (User, error)
	ListUsersExcept(id string) ([]User, error)
}

// User is the stored representation of an account. PasswordHash never
// leaves the repository/service layers; transport DTOs strip it.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"profilePic,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// storedUser is the on-disk document, including the password hash that
// the JSON-facing User deliberately omits.
type storedUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"password_hash"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// Keys: "user:email:<email>" holds the document, "user:id:<id>" is an
// index resolving an ID back to its email key. Email uniqueness is
// enforced inside the create transaction.
func emailKey(email string) []byte { return []byte("user:email:" + email) }
func idKey(id string) []byte       { return []byte("user:id:" + id) }

func (u *UserRepository) CreateUser(email, fullName, hashedPassword string) (User, error) {
	stored := storedUser{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(emailKey(email), data); err != nil {
			return err
		}
		return txn.Set(idKey(stored.ID), []byte(email))
	})
	if err != nil {
		return User{}, err
	}

	return toUser(stored), nil
}

func (u *UserRepository) GetUserByEmail(email string) (User, error) {
	var stored storedUser
	err := u.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, emailKey(email), &stored)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return toUser(stored), nil
}

func (u *UserRepository) GetUserByID(id string) (User, error) {
	var stored storedUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(id))
		if err != nil {
			return err
		}
		var email string
		if err := item.Value(func(val []byte) error {
			email = string(val)
			return nil
		}); err != nil {
			return err
		}
		return readJSON(txn, emailKey(email), &stored)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return toUser(stored), nil
}

func (u *UserRepository) UpdateProfilePicture(id, avatarURL string) (User, error) {
	var stored storedUser
	err := u.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(id))
		if err != nil {
			return err
		}
		var email string
		if err := item.Value(func(val []byte) error {
			email = string(val)
			return nil
		}); err != nil {
			return err
		}
		if err := readJSON(txn, emailKey(email), &stored); err != nil {
			return err
		}
		stored.AvatarURL = avatarURL
		data, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		return txn.Set(emailKey(email), data)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return toUser(stored), nil
}

// ListUsersExcept returns every account except the given one, for the
// contact sidebar.
func (u *UserRepository) ListUsersExcept(id string) ([]User, error) {
	var users []User
	err := u.db.View(func(txn *badger.Txn) error {
		prefix := []byte("user:email:")
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var stored storedUser
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			})
			if err != nil {
				return err
			}
			if stored.ID == id {
				continue
			}
			users = append(users, toUser(stored))
		}
		return nil
	})
	return users, err
}

func readJSON(txn *badger.Txn, key []byte, dst any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}

func toUser(stored storedUser) User {
	return User{
		ID:           stored.ID,
		Email:        stored.Email,
		FullName:     stored.FullName,
		PasswordHash: stored.PasswordHash,
		AvatarURL:    stored.AvatarURL,
		CreatedAt:    stored.CreatedAt,
	}
}
