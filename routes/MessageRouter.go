package routes

import (
	"connectly/controllers"
	"connectly/services"

	"github.com/gin-gonic/gin"
)

func MessageRouter(incomingRoutes *gin.Engine, conversations *services.ConversationService, requireAuth gin.HandlerFunc) {
	mc := controllers.NewMessageController(conversations)

	conversation := incomingRoutes.Group("/conversation", requireAuth)
	conversation.GET("/all", mc.GetConversations)
	conversation.GET("/:otherUserId", mc.GetOrCreateConversation)

	message := incomingRoutes.Group("/message", requireAuth)
	message.POST("/send", mc.SendMessage)
	message.GET("/:conversationId", mc.GetMessages)
}
