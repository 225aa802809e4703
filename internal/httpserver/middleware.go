package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Real authentication lives in a separate service; these middlewares consume
// the identity headers it sets after verifying the session.
const (
	headerCustomerID = "X-Customer-Id"
	headerSessionKey = "X-Session-Key"
	headerAdminKey   = "X-Admin-Key"

	ctxCustomerID = "customerID"
	ctxSessionKey = "sessionKey"
)

func customerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerCustomerID))
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "customer identity required"})
			return
		}
		c.Set(ctxCustomerID, id)
		c.Next()
	}
}

func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(headerSessionKey))
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "session key required"})
			return
		}
		c.Set(ctxSessionKey, key)
		c.Next()
	}
}

func adminMiddleware(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" || c.GetHeader(headerAdminKey) != adminKey {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "admin access required"})
			return
		}
		c.Next()
	}
}

func customerID(c *gin.Context) string {
	return c.GetString(ctxCustomerID)
}

func sessionKey(c *gin.Context) string {
	return c.GetString(ctxSessionKey)
}
