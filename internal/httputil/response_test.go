package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/cardtoken/internal/errors"
)

func createTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleErrorGin(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"not found", apperrors.Wrap(apperrors.ErrNotFound, "session not found"), http.StatusNotFound, "not_found"},
		{"conflict", apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{"invalid input", apperrors.Wrap(apperrors.ErrInvalidInput, "invalid envelope"), http.StatusUnprocessableEntity, "invalid_input"},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"rate limited", apperrors.ErrRateLimited, http.StatusTooManyRequests, "rate_limit_exceeded"},
		{"unavailable", apperrors.Wrap(apperrors.ErrUnavailable, "redis down"), http.StatusServiceUnavailable, "unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := createTestContext()

			HandleErrorGin(c, tt.err, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
		})
	}

	t.Run("internal details are hidden", func(t *testing.T) {
		c, w := createTestContext()
		HandleErrorGin(c, errors.New("private key unseal failed"), nil)
		assert.NotContains(t, w.Body.String(), "private key")
	})

	t.Run("request id is echoed", func(t *testing.T) {
		router := gin.New()
		router.Use(requestid.New())
		router.POST("/v1/tokenize", func(c *gin.Context) {
			HandleErrorGin(c, apperrors.ErrNotFound, nil)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/tokenize", nil)
		req.Header.Set("X-Request-Id", "req-42")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "req-42", decodeError(t, w).RequestID)
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := createTestContext()
		HandleErrorGin(c, nil, nil)
		assert.Empty(t, w.Body.String())
	})
}

func TestHandleBadRequestGin(t *testing.T) {
	c, w := createTestContext()

	HandleBadRequestGin(c, errors.New("unexpected EOF"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "bad_request", resp.Error)
	assert.Equal(t, "unexpected EOF", resp.Message)
}

func TestHandleValidationErrorGin(t *testing.T) {
	c, w := createTestContext()

	HandleValidationErrorGin(c, errors.New("origin: cannot be blank."), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w).Error)
}
