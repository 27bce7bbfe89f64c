package handler

import (
	"errors"
	"net/http"

	"github.com/hummafaranpilot-stack/metatrim/internal/apierror"
	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login godoc
// @Summary      Authenticate the admin account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body dto.LoginRequest true "Credentials"
// @Success      200 {object} dto.LoginResponse
// @Failure      401 {object} apierror.APIError
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, apierror.New("invalid credentials"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("login failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
