package app

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"rolechat/internal/model"
	"rolechat/internal/pkg/jwtutil"
	"rolechat/internal/repository"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUsernameExists    = errors.New("username already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
)

const (
	minUsernameLen = 3
	maxUsernameLen = 64
	minPasswordLen = 8
	maxPasswordLen = 128
)

type AuthService struct {
	userRepo      *repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

// AuthResult carries the signed token plus the memory partition identity the
// token embeds, so callers can surface it without reading the user row.
type AuthResult struct {
	Token      string
	User       *model.User
	MemoryUUID string
}

func NewAuthService(userRepo *repository.UserRepository, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register creates the user and mints a token. The user row gains its memory
// UUID on create; every stored memory snippet for this user is partitioned
// under that identity from the first message on.
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := input.Password

	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	usernameTaken, emailTaken, err := s.userRepo.Taken(username, email)
	if err != nil {
		return nil, err
	}
	if usernameTaken {
		return nil, ErrUsernameExists
	}
	if emailTaken {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := input.Password
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	return s.issue(user)
}

func (s *AuthService) GetUserByID(id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.userRepo.GetByID(id)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username, user.MemoryUUID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user, MemoryUUID: user.MemoryUUID}, nil
}

func validateRegistration(username, email, password string) error {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return fmt.Errorf("%w: username must be %d-%d characters", ErrInvalidInput, minUsernameLen, maxUsernameLen)
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return fmt.Errorf("%w: username may only contain letters, digits, '_' and '-'", ErrInvalidInput)
		}
	}

	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}

	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return fmt.Errorf("%w: password must be %d-%d characters", ErrInvalidInput, minPasswordLen, maxPasswordLen)
	}
	return nil
}
