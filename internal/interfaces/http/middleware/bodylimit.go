package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// BodyLimit caps every request body at maxBytes
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return capBody(maxBytes, "Request body exceeds maximum allowed size")
}

// PayloadLimit is the tighter cap mounted on cart and checkout writes.
// Requests without a body pass untouched.
func PayloadLimit(maxBytes int64) gin.HandlerFunc {
	limit := capBody(maxBytes, fmt.Sprintf("Payload exceeds %d bytes", maxBytes))
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		limit(c)
	}
}

func capBody(maxBytes int64, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeRequestTooLarge, message, c.GetString(logger.GinRequestIDKey)))
			return
		}
		// Chunked bodies carry no Content-Length; the reader enforces the cap while binding.
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
