package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("generates an ID when none is provided", func(t *testing.T) {
		engine := gin.New()
		engine.Use(RequestID())
		engine.GET("/", func(c *gin.Context) {
			assert.NotEmpty(t, c.GetString(RequestIDHeader))
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		engine.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	})

	t.Run("propagates an incoming ID", func(t *testing.T) {
		engine := gin.New()
		engine.Use(RequestID())
		engine.GET("/", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		engine.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	})
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	type payload struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes" binding:"max=5"`
	}

	t.Run("reports json field names", func(t *testing.T) {
		err := binding.Validator.ValidateStruct(&payload{Notes: "too long for five"})
		require.Error(t, err)

		details := ValidationDetails(err)
		require.Len(t, details, 2)

		fields := []string{details[0].Field, details[1].Field}
		assert.Contains(t, fields, "status")
		assert.Contains(t, fields, "notes")
	})

	t.Run("returns nil for non-validation errors", func(t *testing.T) {
		assert.Nil(t, ValidationDetails(assert.AnError))
	})
}
