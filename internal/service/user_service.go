package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quikmart/internal/domain"
	"quikmart/internal/repository"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BcryptCost is the cost factor for password hashes
const BcryptCost = 12

// MaxPasswordBytes is the longest password bcrypt can hash
const MaxPasswordBytes = 72

// UserService defines the interface for account business logic
type UserService interface {
	Signup(ctx context.Context, name, email, password string) (*domain.User, error)
	Signin(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	Promote(ctx context.Context, email string) error
}

type userService struct {
	userRepo repository.UserRepository
	validate *validator.Validate
	cost     int
}

// NewUserService creates a new instance of UserService
func NewUserService(userRepo repository.UserRepository) UserService {
	return newUserService(userRepo, BcryptCost)
}

func newUserService(userRepo repository.UserRepository, cost int) *userService {
	return &userService{
		userRepo: userRepo,
		validate: validator.New(),
		cost:     cost,
	}
}

// Signup registers a new account with role user
func (s *userService) Signup(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmailFormat
	}
	if strings.TrimSpace(name) == "" {
		return nil, validationError("name is required")
	}
	if password == "" {
		return nil, validationError("password is required")
	}
	if len(password) > MaxPasswordBytes {
		return nil, validationError("password must be at most %d bytes", MaxPasswordBytes)
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateUser
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index catches a signup racing past the pre-check
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Signin verifies credentials against the stored bcrypt hash
func (s *userService) Signin(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (s *userService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Promote grants the admin role to the account with email
func (s *userService) Promote(ctx context.Context, email string) error {
	if err := s.userRepo.UpdateRole(ctx, email, domain.RoleAdmin); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to promote user: %w", err)
	}
	return nil
}
