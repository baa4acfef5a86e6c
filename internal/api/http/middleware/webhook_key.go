package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"admissions-back/internal/api/http/handler"
)

const WebhookKeyHeader = "X-Bus-Key"

// WebhookKey authenticates deliveries from the push substrate with a shared
// key. An empty configured key disables the check.
func WebhookKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()

			return
		}

		got := c.GetHeader(WebhookKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.ResponseWithMessage{
				Status:  handler.StatusNotPermitted,
				Message: "invalid webhook key",
			})

			return
		}

		c.Next()
	}
}
