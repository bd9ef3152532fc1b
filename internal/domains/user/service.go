package user

import (
	"context"
)

// Service is the user business logic contract.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) error
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}
