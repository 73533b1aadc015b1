package routes

import (
	"connectly/realtime"

	"github.com/gin-gonic/gin"
)

func ChatRouter(incomingRoutes *gin.Engine, hub *realtime.Hub, requireAuth gin.HandlerFunc) {
	incomingRoutes.GET("/ws", requireAuth, hub.HandleWS)
}
