package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/owenmcgrath/todoist-projection/internal/auth"
	"github.com/owenmcgrath/todoist-projection/internal/dto"
	"github.com/owenmcgrath/todoist-projection/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}
	token, err := h.svc.Login(c.Request.Context(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		case errors.Is(err, service.ErrInvalidPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		default:
			log.Printf("login: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token})
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), auth.BearerToken(c)); err != nil {
		log.Printf("logout: %v", err)
	}
	c.Status(http.StatusNoContent)
}
