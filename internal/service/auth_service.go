package service

import (
	"context"
	"time"

	"github.com/parisxmas/OxiDB/OxiStory/internal/auth"
	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
	"github.com/parisxmas/OxiDB/OxiStory/internal/repository"
)

type AuthService struct {
	admins    repository.AdminStore
	jwtSecret string
}

func NewAuthService(admins repository.AdminStore, jwtSecret string) *AuthService {
	return &AuthService{admins: admins, jwtSecret: jwtSecret}
}

type AuthResult struct {
	Token string               `json:"token"`
	Admin models.AdminResponse `json:"admin"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if admin == nil || !auth.CheckPassword(password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	token, err := auth.GenerateToken(s.jwtSecret, admin.ID, admin.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Admin: admin.ToResponse()}, nil
}

// SeedAdmin creates the operator account unless one with that email exists.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	existing, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.admins.Create(ctx, &models.Admin{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	})
	return err
}
