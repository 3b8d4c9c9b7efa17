package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ds124wfegd/eventhub/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const userIDKey = "user_id"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// Auth accepts "Authorization: Bearer <token>" for a user who is still
// logged in and stores the user id in the gin context.
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abort(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, entity.ErrUnauthorized) || errors.Is(err, entity.ErrNotFound) {
				abort(c, http.StatusUnauthorized, err.Error())
				return
			}
			logrus.WithField("error", err).Error("Authentication failed")
			abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"statusCode": status,
		"message":    message,
	})
}

// UserID returns the id stored by Auth, or 0 outside protected routes.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
