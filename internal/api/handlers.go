// Package api contains the HTTP handlers and router for Atlas
package api

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/aethra/atlas/internal/auth"
	apperrors "github.com/aethra/atlas/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Handler holds the shared dependencies of the API layer
type Handler struct {
	db  *gorm.DB
	jwt *auth.JWTService
}

// NewHandler creates the shared handler
func NewHandler(db *gorm.DB, jwt *auth.JWTService) *Handler {
	return &Handler{db: db, jwt: jwt}
}

// Health returns service health
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}

// AuthMiddleware validates the Bearer token and stores the caller's
// identity in the request context.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(c, apperrors.NewUnauthorizedError(""))
			c.Abort()
			return
		}

		claims, err := h.jwt.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondError(c, apperrors.NewUnauthorizedError("invalid or expired token"))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Next()
	}
}

// respondError writes any error as its HTTP representation.
func respondError(c *gin.Context, err error) {
	status, body := apperrors.ToHTTPError(err)
	c.JSON(status, body)
}

// bindJSON binds the request body and converts binding failures into
// field-keyed validation errors.
func bindJSON(c *gin.Context, dst interface{}) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	if verrs, ok := err.(validator.ValidationErrors); ok {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[snakeCase(fe.Field())] = validationMessage(fe)
		}
		return apperrors.NewValidationErrors(fields)
	}
	return apperrors.NewBadRequestError("invalid request body: " + err.Error())
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	default:
		return "invalid value"
	}
}

// snakeCase converts a Go field name (ParentID, AttributeIDs) to its JSON
// key. A word starts at an uppercase rune preceded by a lowercase one, so an
// acronym run and any trailing lowercase (the "Ds" in "IDs") stay one word.
func snakeCase(s string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && !unicode.IsUpper(prev) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}
