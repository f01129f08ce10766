package auth

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/database/users"
	"github.com/shelfmark/shelfmark/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	// ErrInvalidCredentials covers both unknown email and wrong
	// password so login failures leak nothing about which it was.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrNameRequired       = errors.New("name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidRole        = errors.New("invalid role")
)

// Service handles credential verification and account creation.
type Service struct {
	users  *users.Repository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(repo *users.Repository, cfg config.Auth) *Service {
	return &Service{users: repo, config: cfg}
}

// Signup creates a student account. Duplicate emails are rejected, the
// password is bcrypt-hashed before it reaches the store.
func (s *Service) Signup(name, email, password string) (*entities.User, error) {
	return s.CreateUser(name, email, password, entities.UserRoleStudent)
}

// CreateUser creates an account with an explicit role. Only the signup
// flow (student role) and admin tooling call this.
func (s *Service) CreateUser(name, email, password string, role entities.UserRole) (*entities.User, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	// RFC 5321 caps addresses at 254 bytes
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}
	if !entities.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, database.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate validates credentials and returns the user.
func (s *Service) Authenticate(email, password string) (*entities.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUserByID retrieves a user by id.
func (s *Service) GetUserByID(id string) (*entities.User, error) {
	return s.users.GetByID(id)
}

// ChangePassword updates a user's password after verifying the old one.
func (s *Service) ChangePassword(userID, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if err := CheckPassword(oldPassword, user.PasswordHash); err != nil {
		return err
	}

	newHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.users.Update(userID, map[string]any{"password_hash": newHash})
}
