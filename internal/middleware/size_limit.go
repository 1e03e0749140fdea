package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var multipartOverhead = int64(8 * 1024) // rough padding

// SizeLimit caps the request body at maxBodyBytes plus multipart framing.
// Reads past the limit surface http.MaxBytesError, usually answered with 413.
func SizeLimit(maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes+multipartOverhead)

		c.Next()
	}
}
