package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexflow/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size.
// Requests that declare a larger Content-Length are rejected up front;
// chunked bodies are cut off by http.MaxBytesReader while being read.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, dto.ErrCodePayloadTooLarge, "Request body exceeds maximum allowed size")
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
