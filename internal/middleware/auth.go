// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/beathaus/beathaus-backend/internal/models"
	"github.com/beathaus/beathaus-backend/internal/utils"
)

func AuthRequired(tm *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := verifyBearer(c, tm)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		// Set user info in context
		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_name", claims.Name)
		c.Set("user_role", string(models.NormalizeRole(claims.Role)))
		c.Next()
	}
}

// ProducerRequired gates catalog mutation routes. Must run after AuthRequired.
func ProducerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != string(models.RoleProducer) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Producer access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func OptionalAuth(tm *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := verifyBearer(c, tm); ok {
			c.Set("user_id", claims.UserID)
			c.Set("user_email", claims.Email)
			c.Set("user_name", claims.Name)
			c.Set("user_role", string(models.NormalizeRole(claims.Role)))
		}
		c.Next()
	}
}

func verifyBearer(c *gin.Context, tm *utils.TokenManager) (*utils.TokenClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := tm.Verify(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}
