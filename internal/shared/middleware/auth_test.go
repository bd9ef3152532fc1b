package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimoire-backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuthRouter(manager *jwt.Manager) (*gin.Engine, *uuid.UUID) {
	var captured uuid.UUID

	router := gin.New()
	router.GET("/protected", AuthMiddleware(manager), func(c *gin.Context) {
		if userID, ok := UserIDFromContext(c); ok {
			captured = userID
		}
		c.Status(http.StatusOK)
	})

	return router, &captured
}

func TestAuthMiddleware(t *testing.T) {
	manager := jwt.NewManager("test-secret", time.Hour)

	t.Run("valid token passes and exposes the caller", func(t *testing.T) {
		userID := uuid.New()
		token, err := manager.GenerateToken(userID.String())
		require.NoError(t, err)

		router, captured := setupAuthRouter(manager)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID, *captured)
	})

	t.Run("missing header answers 401", func(t *testing.T) {
		router, _ := setupAuthRouter(manager)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header answers 401", func(t *testing.T) {
		router, _ := setupAuthRouter(manager)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another secret answers 401", func(t *testing.T) {
		other := jwt.NewManager("other-secret", time.Hour)
		token, err := other.GenerateToken(uuid.NewString())
		require.NoError(t, err)

		router, _ := setupAuthRouter(manager)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token answers 401", func(t *testing.T) {
		expired := jwt.NewManager("test-secret", -time.Hour)
		token, err := expired.GenerateToken(uuid.NewString())
		require.NoError(t, err)

		router, _ := setupAuthRouter(manager)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token carrying a non-uuid identity answers 401", func(t *testing.T) {
		token, err := manager.GenerateToken("not-a-uuid")
		require.NoError(t, err)

		router, _ := setupAuthRouter(manager)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
