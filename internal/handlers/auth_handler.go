package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quality-service/internal/middleware"
	"quality-service/internal/services"
)

// AuthHandler handles login, logout and session introspection
type AuthHandler struct {
	auth         *services.AuthService
	logger       *logrus.Logger
	cookieName   string
	cookieSecure bool
	sessionTTL   int // seconds
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService, logger *logrus.Logger, cookieName string, cookieSecure bool, sessionTTLSeconds int) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		logger:       logger,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
		sessionTTL:   sessionTTLSeconds,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and opens a session
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	token, auth, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, h.sessionTTL, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user_id": auth.UserID,
		"role":    auth.Role,
	})
}

// Logout revokes the current session
func (h *AuthHandler) Logout(c *gin.Context) {
	auth, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err := h.auth.Logout(c.Request.Context(), auth); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.SetCookie(h.cookieName, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the resolved session identity
func (h *AuthHandler) Me(c *gin.Context) {
	auth, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, auth)
}
