package service

import (
	"context"
	"errors"
	"time"

	"github.com/hummafaranpilot-stack/metatrim/internal/config"
	"github.com/hummafaranpilot-stack/metatrim/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService authenticates the single admin account configured via
// environment: ADMIN_USER plus a bcrypt ADMIN_PASSWORD_HASH generated
// with cmd/genhash. The dashboard has exactly one operator; there is no
// user table.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	cfg *config.Config
}

func NewAuthService(cfg *config.Config) AuthService {
	return &authService{cfg: cfg}
}

func (s *authService) Login(_ context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if req.Username != s.cfg.AdminUser {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiry := time.Duration(s.cfg.JWTExpirationHours) * time.Hour
	claims := jwt.MapClaims{
		"sub": s.cfg.AdminUser,
		"exp": time.Now().Add(expiry).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
	}, nil
}
