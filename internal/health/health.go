// Package health exposes the liveness endpoint used by uptime checks.
// It never touches game state.
package health

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Serve blocks on a minimal HTTP responder: 200 on / and /health.
func Serve(port int) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	return r.Run(fmt.Sprintf(":%d", port))
}
