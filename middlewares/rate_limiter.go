package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var (
	loginLimiters   = make(map[string]*rate.Limiter)
	loginLimitersMu sync.Mutex
)

// NewStrictRateLimiter membatasi endpoint login per alamat IP.
func NewStrictRateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		loginLimitersMu.Lock()
		limiter, ok := loginLimiters[ip]
		if !ok {
			// 5 percobaan per menit per IP
			limiter = rate.NewLimiter(rate.Every(1*time.Minute), 5)
			loginLimiters[ip] = limiter
		}
		loginLimitersMu.Unlock()

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Terlalu banyak percobaan, silakan tunggu beberapa saat",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
