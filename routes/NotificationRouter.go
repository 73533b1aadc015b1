package routes

import (
	"connectly/controllers"
	"connectly/services"

	"github.com/gin-gonic/gin"
)

func NotificationRouter(incomingRoutes *gin.Engine, notifications *services.NotificationService, requireAuth gin.HandlerFunc) {
	nc := controllers.NewNotificationController(notifications)

	notification := incomingRoutes.Group("/notification", requireAuth)
	notification.GET("/all", nc.GetAll)
	notification.DELETE("/all", nc.DeleteAll)
	notification.POST("/read/all", nc.MarkAllRead)
	notification.POST("/read/:id", nc.MarkRead)
	notification.GET("/count/unread", nc.CountUnread)
	notification.DELETE("/:id", nc.Delete)
}
