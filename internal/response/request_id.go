package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// ContextKeyRequestID is the Gin context key under which the request ID
// is stored for the envelope metadata.
const ContextKeyRequestID = "request_id"

// RequestIDMiddleware tags each request with an ID, honoring one supplied
// by the caller so upstream proxies can correlate logs.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
