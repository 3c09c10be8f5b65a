package service

import (
	"context"
	"errors"
	"strings"

	"loyalty/internal/model"
	"loyalty/internal/repository"
	"loyalty/pkg/auth"

	"gorm.io/gorm"
)

const (
	AuthStatusRegistered = "Registered"
	AuthStatusLoggedIn   = "LoggedIn"
)

type authUserStore interface {
	GetByPhone(ctx context.Context, phone string, mallID int64) (*model.UserProfile, error)
	Create(ctx context.Context, tx *gorm.DB, user *model.UserProfile) error
}

type AuthResult struct {
	Status      string `json:"message"`
	UserID      int64  `json:"user_id"`
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name"`
}

// AuthService implements the login-or-register upsert: one call either
// creates the profile for a never-seen (phone, mall) pair or verifies
// the password of the existing one.
type AuthService struct {
	users authUserStore
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{users: repository.NewUserRepository(db)}
}

func (s *AuthService) LoginOrRegister(ctx context.Context, phone, password, name string, mallID int64) (*AuthResult, error) {
	if strings.TrimSpace(phone) == "" || password == "" {
		return nil, &ValidationError{Field: phoneField, Message: "PhoneNumber and Password are required"}
	}

	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByPhone(ctx, normalized, mallID)
	if err == nil {
		return s.login(user, password)
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	newUser := &model.UserProfile{
		PhoneNumber:  normalized,
		Name:         strings.TrimSpace(name),
		Role:         model.RoleUser,
		MallID:       mallID,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, nil, newUser); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// Lost the registration race: someone inserted this
			// (phone, mall) pair between our lookup and the commit.
			// Present it exactly like an ordinary login attempt.
			existing, ferr := s.users.GetByPhone(ctx, normalized, mallID)
			if ferr != nil {
				return nil, ferr
			}
			return s.login(existing, password)
		}
		return nil, err
	}

	return &AuthResult{
		Status:      AuthStatusRegistered,
		UserID:      newUser.ID,
		PhoneNumber: newUser.PhoneNumber,
		Name:        newUser.Name,
	}, nil
}

// login verifies the password against the stored hash. The name on file
// wins over whatever the request carried: display name is first-write.
func (s *AuthService) login(user *model.UserProfile, password string) (*AuthResult, error) {
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return &AuthResult{
		Status:      AuthStatusLoggedIn,
		UserID:      user.ID,
		PhoneNumber: user.PhoneNumber,
		Name:        user.Name,
	}, nil
}
