package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"grimoire-backend/internal/domains/user"
	"grimoire-backend/pkg/jwt"
)

const bcryptCost = 12

type userService struct {
	repo       user.Repository
	jwtManager *jwt.Manager
}

func NewUserService(repo user.Repository, jwtManager *jwt.Manager) user.Service {
	return &userService{
		repo:       repo,
		jwtManager: jwtManager,
	}
}

// Signup creates an account with a bcrypt-hashed password.
func (s *userService) Signup(ctx context.Context, req user.SignupRequest) error {
	// Step 1: Validate input
	if err := req.Validate(); err != nil {
		return err
	}

	// Step 2: Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// Step 3: Persist; the unique index on email is the duplicate check
	newUser := &user.User{
		Email:        req.Email,
		PasswordHash: string(passwordHash),
	}

	return s.repo.Create(ctx, newUser)
}

// Login verifies credentials and mints the access token the book
// routes authenticate with.
func (s *userService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	// Step 1: Validate input
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Look up the account. An unknown email answers the same
	// as a wrong password.
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, user.ErrInvalidCredentials
	}

	// Step 3: Constant-time password comparison
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	// Step 4: Mint the token
	token, err := s.jwtManager.GenerateToken(u.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &user.LoginResponse{
		UserID: u.ID.String(),
		Token:  token,
	}, nil
}
