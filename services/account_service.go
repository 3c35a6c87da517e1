//go:generate go run go.uber.org/mock/mockgen -source=account_service.go -destination=../mocks/mock_account_service.go -package=mocks
package services

import (
	"fmt"
	"time"

	"presence-lab/auth"
	"presence-lab/errors"
	"presence-lab/repositories"
)

// IAccountService is the credential collaborator: it owns passwords and
// account creation. The presence core never calls it; it only trusts its
// output, an authenticated {username, avatar} identity.
type IAccountService interface {
	Register(username, password, avatar string) (Token, Account, error)
	Login(username, password string) (Token, Account, error)
}

type Token string

// Account is the authenticated identity handed to clients, and the only
// shape the presence core ever learns about a user.
type Account struct {
	UserID   string
	Username string
	Avatar   string
}

type AccountService struct {
	userRepository repositories.IUserRepository
	tokenDuration  time.Duration
}

func NewAccountService(repo repositories.IUserRepository, tokenDuration time.Duration) IAccountService {
	return &AccountService{userRepository: repo, tokenDuration: tokenDuration}
}

func (s *AccountService) Register(username, password, avatar string) (Token, Account, error) {
	valReq := auth.RegisterRequest{
		Username: username,
		Password: password,
		Avatar:   avatar,
	}

	// Validate business rules before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", Account{}, fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// Hashing happens in the service layer to keep the repository unaware
	// of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", Account{}, fmt.Errorf("hashing failed: %w", err)
	}

	userID, err := s.userRepository.CreateUser(username, hashedPassword, avatar)
	if err != nil {
		return "", Account{}, err // Propagates ErrUserAlreadyExists if the name is taken
	}

	token, err := auth.GenerateToken(userID, username, s.tokenDuration)
	if err != nil {
		return "", Account{}, errors.ErrTokenGeneration
	}

	return Token(token), Account{UserID: userID, Username: username, Avatar: avatar}, nil
}

func (s *AccountService) Login(username, password string) (Token, Account, error) {
	user, err := s.userRepository.GetUserByUsername(username)
	if err != nil {
		// Generic error to prevent user enumeration attacks.
		return "", Account{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", Account{}, errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.tokenDuration)
	if err != nil {
		return "", Account{}, errors.ErrTokenGeneration
	}

	return Token(token), Account{UserID: user.ID, Username: user.Username, Avatar: user.Avatar}, nil
}
