package services

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"chatline/auth"
	"chatline/errors"
	"chatline/repositories"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newAuthService(t *testing.T) (IAuthService, *auth.Issuer) {
	t.Helper()
	db := openTestDB(t)
	issuer := auth.NewIssuer("test_secret_key_for_unit_tests", time.Hour)
	svc := NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewImageRepository(db),
		issuer,
	)
	return svc, issuer
}

func TestAuthService_Register(t *testing.T) {
	svc, issuer := newAuthService(t)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		token, user, err := svc.Register("test@example.com", "Test User", "ComplexPass123!")
		req.NoError(err)
		req.NotEmpty(token)
		req.NotEmpty(user.ID)

		claims, err := issuer.Verify(string(token))
		req.NoError(err)
		req.Equal(user.ID, claims.UserID)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)
		token, _, err := svc.Register("weak@example.com", "Weak", "simple")
		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(token)

		// Nothing was persisted.
		_, _, err = svc.Login("weak@example.com", "simple")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should fail when the email is already taken", func(t *testing.T) {
		req := require.New(t)
		_, _, err := svc.Register("dup@example.com", "First", "ComplexPass123!")
		req.NoError(err)

		_, _, err = svc.Register("dup@example.com", "Second", "ComplexPass123!")
		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	svc, issuer := newAuthService(t)
	_, registered, err := svc.Register("user@example.com", "User", "Secret123456!")
	require.NoError(t, err)

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		token, user, err := svc.Login("user@example.com", "Secret123456!")
		req.NoError(err)
		req.Equal(registered.ID, user.ID)

		claims, err := issuer.Verify(string(token))
		req.NoError(err)
		req.Equal(registered.ID, claims.UserID)
	})

	t.Run("should reject a wrong password", func(t *testing.T) {
		req := require.New(t)
		_, _, err := svc.Login("user@example.com", "WrongPassword1!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should reject an unknown email", func(t *testing.T) {
		req := require.New(t)
		_, _, err := svc.Login("ghost@example.com", "Secret123456!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}

func TestAuthService_UpdateProfilePicture(t *testing.T) {
	svc, _ := newAuthService(t)
	_, user, err := svc.Register("ava@example.com", "Ava", "ComplexPass123!")
	require.NoError(t, err)

	t.Run("should store a sniffed image and update the avatar", func(t *testing.T) {
		req := require.New(t)
		payload := base64.StdEncoding.EncodeToString(pngHeader)

		updated, err := svc.UpdateProfilePicture(user.ID, payload)
		req.NoError(err)
		req.Contains(updated.AvatarURL, "/images/")

		fetched, err := svc.GetUser(user.ID)
		req.NoError(err)
		req.Equal(updated.AvatarURL, fetched.AvatarURL)
	})

	t.Run("should accept a data-URL prefix", func(t *testing.T) {
		req := require.New(t)
		payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)

		updated, err := svc.UpdateProfilePicture(user.ID, payload)
		req.NoError(err)
		req.Contains(updated.AvatarURL, "/images/")
	})

	t.Run("should reject a non-image payload", func(t *testing.T) {
		req := require.New(t)
		payload := base64.StdEncoding.EncodeToString([]byte("definitely not an image"))

		_, err := svc.UpdateProfilePicture(user.ID, payload)
		req.ErrorIs(err, errors.ErrInvalidImage)
	})

	t.Run("should reject invalid base64", func(t *testing.T) {
		req := require.New(t)
		_, err := svc.UpdateProfilePicture(user.ID, "%%%not-base64%%%")
		req.ErrorIs(err, errors.ErrInvalidImage)
	})
}
