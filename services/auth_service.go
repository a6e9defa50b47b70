package services

import (
	"fmt"

	"chatline/auth"
	"chatline/errors"
	"chatline/repositories"
)

type IAuthService interface {
	Register(email, fullName, password string) (Token, repositories.User, error)
	Login(email, password string) (Token, repositories.User, error)
	GetUser(id string) (repositories.User, error)
	UpdateProfilePicture(userID, imagePayload string) (repositories.User, error)
}

type Token string

type AuthService struct {
	userRepository  repositories.IUserRepository
	imageRepository repositories.IImageRepository
	issuer          *auth.Issuer
}

func NewAuthService(userRepository repositories.IUserRepository,
	imageRepository repositories.IImageRepository, issuer *auth.Issuer) IAuthService {
	return &AuthService{
		userRepository:  userRepository,
		imageRepository: imageRepository,
		issuer:          issuer,
	}
}

func (s *AuthService) Register(email, fullName, password string) (Token, repositories.User, error) {
	// Validate business rules before any expensive cryptographic work.
	if err := auth.ValidateSignup(auth.SignupRequest{
		Email:    email,
		FullName: fullName,
		Password: password,
	}); err != nil {
		return "", repositories.User{}, fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// Hashing happens here so the repository never sees plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", repositories.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.userRepository.CreateUser(email, fullName, hashedPassword)
	if err != nil {
		return "", repositories.User{}, err
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return "", repositories.User{}, errors.ErrTokenGeneration
	}
	return Token(token), user, nil
}

func (s *AuthService) Login(email, password string) (Token, repositories.User, error) {
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration.
		return "", repositories.User{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", repositories.User{}, errors.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return "", repositories.User{}, errors.ErrTokenGeneration
	}
	return Token(token), user, nil
}

func (s *AuthService) GetUser(id string) (repositories.User, error) {
	return s.userRepository.GetUserByID(id)
}

// UpdateProfilePicture stores the uploaded avatar and points the account
// at its serving path.
func (s *AuthService) UpdateProfilePicture(userID, imagePayload string) (repositories.User, error) {
	data, contentType, err := decodeImagePayload(imagePayload)
	if err != nil {
		return repositories.User{}, err
	}

	imageID, err := s.imageRepository.StoreImage(data, contentType)
	if err != nil {
		return repositories.User{}, err
	}

	return s.userRepository.UpdateProfilePicture(userID, "/images/"+imageID)
}
