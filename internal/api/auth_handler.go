package api

import (
	"net/http"
	"time"

	"github.com/aethra/atlas/internal/auth"
	apperrors "github.com/aethra/atlas/internal/errors"
	"github.com/aethra/atlas/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthHandler contains the authentication handlers
type AuthHandler struct {
	db  *gorm.DB
	jwt *auth.JWTService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwt *auth.JWTService) *AuthHandler {
	return &AuthHandler{db: db, jwt: jwt}
}

// Login authenticates a user and returns an access token
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	var user models.User
	if err := h.db.First(&user, "email = ?", input.Email).Error; err != nil {
		respondError(c, apperrors.NewUnauthorizedError("invalid credentials"))
		return
	}
	if !user.IsActive {
		respondError(c, apperrors.NewUnauthorizedError("account is disabled"))
		return
	}
	if !auth.CheckPassword(input.Password, user.PasswordHash) {
		respondError(c, apperrors.NewUnauthorizedError("invalid credentials"))
		return
	}

	token, expiresAt, err := h.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		respondError(c, apperrors.NewInternalError(err))
		return
	}

	now := time.Now()
	user.LastLoginAt = &now
	h.db.Model(&user).Update("last_login_at", now)

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}

// Me returns the authenticated user
// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := c.Get("user_id")
	if !ok {
		respondError(c, apperrors.NewUnauthorizedError(""))
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID.(uuid.UUID)).Error; err != nil {
		respondError(c, apperrors.NewNotFoundError("user"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
