package middleware

import (
	"fmt"
	"net/http"

	"gameflix/utils"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into a 500 envelope. The panic value reaches the
// client only when exposeDetails is set (non-release builds).
func Recovery(exposeDetails bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		utils.LogError("Panic recovered", map[string]interface{}{
			"panic":  fmt.Sprint(recovered),
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})

		message := "Internal Server Error"
		if exposeDetails {
			message = fmt.Sprint(recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   true,
			"status":  http.StatusInternalServerError,
			"message": message,
		})
	})
}
