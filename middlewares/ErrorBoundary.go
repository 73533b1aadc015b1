package middlewares

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"connectly/helper"

	"github.com/gin-gonic/gin"
)

// ErrorBoundary turns a panicking handler into a generic 500 envelope. The
// stack trace goes to the log only.
func ErrorBoundary() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.Printf("[%s] panic: %v\n%s", c.GetString(helper.RequestIDKey), recovered, debug.Stack())
		helper.Fail(c, fmt.Errorf("panic: %v", recovered))
	})
}

// NoRoute answers unknown paths with the 404 envelope.
func NoRoute(c *gin.Context) {
	helper.Fail(c, helper.NotFound("Route "+c.Request.Method+" "+c.Request.URL.Path+" not found"))
}

// NoMethod answers known paths hit with the wrong method.
func NoMethod(c *gin.Context) {
	helper.Fail(c, helper.NewApiError(http.StatusMethodNotAllowed, "Method not allowed"))
}
