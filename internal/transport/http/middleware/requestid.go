package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/studentversedubai-rgb/website-backend/internal/requestid"
)

const requestIDHeader = "X-Request-ID"

// RequestID keeps a well-formed incoming X-Request-ID and generates one
// otherwise. The ID is echoed in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := requestid.Sanitize(c.GetHeader(requestIDHeader))
		if id == "" {
			id = requestid.New()
		}

		ctx := requestid.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
