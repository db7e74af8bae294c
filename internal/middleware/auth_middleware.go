package middleware

import (
	"net/http"
	"strings"

	"pharmaledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
// It puts the operator's identity in the context so ledger actions can be
// attributed; there is no role check beyond a valid token.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format. Use Bearer <token>"})
			c.Abort()
			return
		}

		tokenString := parts[1]
		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			c.Abort()
			return
		}

		// Set operator information in the context for downstream handlers
		c.Set("operatorID", claims.OperatorID)
		c.Set("operatorCode", claims.OperatorCode)

		c.Next()
	}
}

// OperatorIDFromContext returns the authenticated operator's ID for audit
// attribution, or nil when the request carried no valid token claims.
func OperatorIDFromContext(c *gin.Context) *int64 {
	v, exists := c.Get("operatorID")
	if !exists {
		return nil
	}
	id, ok := v.(int64)
	if !ok {
		return nil
	}
	return &id
}
