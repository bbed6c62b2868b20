package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// SingleWriter serializes mutating requests and lets reads run alongside each other.
// GET, HEAD and OPTIONS take the shared lock; every other method takes the exclusive one.
func SingleWriter() gin.HandlerFunc {
	var mu sync.RWMutex
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			mu.RLock()
			defer mu.RUnlock()
		default:
			mu.Lock()
			defer mu.Unlock()
		}
		c.Next()
	}
}
