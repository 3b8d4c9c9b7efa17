package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ds124wfegd/eventhub/internal/entity"
	"github.com/ds124wfegd/eventhub/internal/transport/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Response is the envelope of every JSON answer except payment verification.
type Response struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

func badRequest(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, message, nil)
}

// statusOf maps an error kind to its HTTP status. Zero means unknown.
func statusOf(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, entity.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrExpired):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrInvalidCode):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, entity.ErrCapacity):
		return http.StatusConflict
	}
	return 0
}

func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == 0 {
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"error":  err,
		}).Error("Unhandled error")
		respond(c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	var rl *entity.RateLimitError
	if errors.As(err, &rl) {
		c.Header("Retry-After", strconv.FormatInt(rl.Seconds(), 10))
		respond(c, status, err.Error(), gin.H{"retry_after": rl.Seconds()})
		return
	}
	respond(c, status, err.Error(), nil)
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+param)
		return 0, false
	}
	return id, true
}

func userID(c *gin.Context) int64 {
	return middleware.UserID(c)
}
