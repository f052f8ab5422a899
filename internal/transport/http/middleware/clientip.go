package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/studentversedubai-rgb/website-backend/internal/clientip"
)

// ClientIP resolves the caller address once and stores it on the request
// context for rate limiting and logs.
func ClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := clientip.Resolve(c.Request)
		c.Request = c.Request.WithContext(clientip.WithIP(c.Request.Context(), ip))
		c.Next()
	}
}
