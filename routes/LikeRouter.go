package routes

import (
	"connectly/controllers"
	"connectly/models"
	"connectly/services"

	"github.com/gin-gonic/gin"
)

func LikeRouter(incomingRoutes *gin.Engine, likes *services.LikeService, requireAuth gin.HandlerFunc) {
	lc := controllers.NewLikeController(likes)

	like := incomingRoutes.Group("/like", requireAuth)
	like.POST("/toggle/post/:id", lc.Toggle(models.TargetPost))
	like.POST("/toggle/comment/:id", lc.Toggle(models.TargetComment))
	like.GET("/get/post/:id", lc.GetPostLikes)
	like.GET("/all", lc.GetUserLikes)
}
