package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dinein-app/utils"
)

var ErrNoPermission = errors.New("you do not have permission for this action")

// RequireRoles membatasi endpoint ke role staff tertentu.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleInterface, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
			c.Abort()
			return
		}

		role := roleInterface.(string)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		c.Abort()
	}
}
