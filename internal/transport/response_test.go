package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ds124wfegd/eventhub/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{entity.NewInvalidInput("bad"), http.StatusBadRequest},
		{entity.ErrTokenExpired, http.StatusBadRequest},
		{entity.ErrInvalidOtp, http.StatusBadRequest},
		{entity.ErrEventNotFound, http.StatusNotFound},
		{entity.ErrEmailTaken, http.StatusConflict},
		{entity.ErrEventFullyBooked, http.StatusConflict},
		{entity.ErrInvalidCredentials, http.StatusUnauthorized},
		{entity.ErrNotTicketOwner, http.StatusForbidden},
		{&entity.RateLimitError{Wait: time.Second}, http.StatusTooManyRequests},
		{fmt.Errorf("wrapped: %w", entity.ErrAlreadyBooked), http.StatusConflict},
		{errors.New("db is gone"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}

func serveError(err error) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	respondError(c, err)
	return w
}

func TestRespondError(t *testing.T) {
	t.Run("domain error keeps its message", func(t *testing.T) {
		w := serveError(entity.ErrEventNotFound)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var body Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, http.StatusNotFound, body.StatusCode)
		assert.Equal(t, "Event not found", body.Message)
		assert.Nil(t, body.Data)
	})

	t.Run("rate limit sets Retry-After", func(t *testing.T) {
		w := serveError(&entity.RateLimitError{Wait: 42*time.Second + time.Millisecond})

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "43", w.Header().Get("Retry-After"))
		var body struct {
			Message string `json:"message"`
			Data    struct {
				RetryAfter int64 `json:"retry_after"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, int64(43), body.Data.RetryAfter)
		assert.Contains(t, body.Message, "43 seconds")
	})

	t.Run("unknown error is hidden", func(t *testing.T) {
		w := serveError(errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var body Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Internal server error", body.Message)
	})
}
