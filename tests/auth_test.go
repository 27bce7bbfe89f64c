package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/hummafaranpilot-stack/metatrim/internal/config"
	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func authConfig(t *testing.T, password string) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &config.Config{
		AdminUser:          "admin",
		AdminPasswordHash:  string(hash),
		JWTSecret:          "test-secret",
		JWTExpirationHours: 8,
	}
}

func TestLogin_Success(t *testing.T) {
	cfg := authConfig(t, "hunter22")
	svc := service.NewAuthService(cfg)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "admin", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)

	token, err := jwt.Parse(resp.AccessToken, func(_ *jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	sub, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "admin", sub)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := service.NewAuthService(authConfig(t, "hunter22"))

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "admin", Password: "letmein"})
	assert.True(t, errors.Is(err, service.ErrInvalidCredentials))
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := service.NewAuthService(authConfig(t, "hunter22"))

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "root", Password: "hunter22"})
	assert.True(t, errors.Is(err, service.ErrInvalidCredentials))
}
