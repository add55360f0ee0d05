package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dinein-app/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if status >= 500 {
			utils.ErrorLogger.Printf("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, status, latency)
		} else {
			utils.InfoLogger.Printf("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, status, latency)
		}
	}
}
