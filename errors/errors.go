package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrEmptyMessage       = fmt.Errorf("message has no text and no image")
	ErrInvalidImage       = fmt.Errorf("unsupported image payload")
	ErrImageNotFound      = fmt.Errorf("image not found")
	ErrConnectionClosed   = fmt.Errorf("connection closed")
)

// MapToHTTPStatus translates domain sentinels into HTTP status codes at the
// transport boundary. Unknown errors map to 500 so internals never leak.
func MapToHTTPStatus(err error) int {
	switch {
	case stderrors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	case stderrors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrInvalidPassword),
		stderrors.Is(err, ErrEmptyMessage),
		stderrors.Is(err, ErrInvalidImage):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrUserNotFound),
		stderrors.Is(err, ErrImageNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
