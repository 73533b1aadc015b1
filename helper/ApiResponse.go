package helper

import (
	"log"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is where middlewares.RequestID stores the request id.
const RequestIDKey = "requestId"

// ApiResponse is the envelope every handler responds with.
type ApiResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

func Respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, ApiResponse{StatusCode: status, Message: message, Data: data})
}

// Fail writes err as an error envelope. Errors that are not ApiErrors are
// logged and replaced by a generic 500.
func Fail(c *gin.Context, err error) {
	apiErr, ok := AsApiError(err)
	if !ok {
		log.Printf("[%s] %s %s: %v", c.GetString(RequestIDKey), c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(apiErr.StatusCode, ApiResponse{
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message,
		Data:       nil,
	})
}
