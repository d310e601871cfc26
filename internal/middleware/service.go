package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// ServiceKeyMiddleware guards job endpoints that are triggered by an external
// scheduler rather than a logged-in user. The key is supplied out of band.
func ServiceKeyMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		serviceKey := os.Getenv("SERVICE_KEY")

		if serviceKey == "" {
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Service key is not configured"})
			return
		}

		provided := ctx.GetHeader("X-Service-Key")

		if subtle.ConstantTimeCompare([]byte(provided), []byte(serviceKey)) != 1 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid service key"})
			return
		}

		ctx.Next()
	}
}
