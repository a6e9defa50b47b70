package auth

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	"chatline/errors"
)

var validate = validator.New()

type SignupRequest struct {
	Email    string `validate:"required,email"`
	FullName string `validate:"required,min=1,max=128"`
	Password string `validate:"required,min=12,max=72"`
}

// ValidateSignup checks structural rules first, then password complexity,
// so the cheap rejections happen before any cryptographic work.
func ValidateSignup(req SignupRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

// isPasswordComplex requires at least one uppercase, lowercase, digit and
// special character.
func isPasswordComplex(s string) bool {
	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
