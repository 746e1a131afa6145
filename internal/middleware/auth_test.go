// internal/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beathaus/beathaus-backend/internal/utils"
)

func protectedRouter(tm *utils.TokenManager, producerOnly bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	chain := []gin.HandlerFunc{AuthRequired(tm)}
	if producerOnly {
		chain = append(chain, ProducerRequired())
	}
	chain = append(chain, func(c *gin.Context) {
		userID, _ := utils.GetUserIDFromContext(c)
		role, _ := utils.GetUserRoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
	})

	router.GET("/protected", chain...)
	return router
}

func get(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	tm := utils.NewTokenManager("test-secret")
	router := protectedRouter(tm, false)

	token, err := tm.Generate(5, "user@example.com", "User", "buyer", 1)
	require.NoError(t, err)

	w := get(router, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":5`)

	assert.Equal(t, http.StatusUnauthorized, get(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "not-a-token").Code)

	other, err := utils.NewTokenManager("other-secret").Generate(5, "user@example.com", "User", "buyer", 1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(router, other).Code)
}

func TestProducerRequired(t *testing.T) {
	tm := utils.NewTokenManager("test-secret")
	router := protectedRouter(tm, true)

	producer, err := tm.Generate(1, "p@example.com", "P", "producer", 1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(router, producer).Code)

	// "admin" claims normalize to producer.
	admin, err := tm.Generate(2, "a@example.com", "A", "admin", 1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(router, admin).Code)

	buyer, err := tm.Generate(3, "b@example.com", "B", "buyer", 1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(router, buyer).Code)

	unknown, err := tm.Generate(4, "u@example.com", "U", "something-else", 1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(router, unknown).Code)
}
