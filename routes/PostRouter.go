package routes

import (
	"connectly/controllers"
	"connectly/services"

	"github.com/gin-gonic/gin"
)

func PostRouter(incomingRoutes *gin.Engine, posts *services.PostService, requireAuth gin.HandlerFunc) {
	pc := controllers.NewPostController(posts)
	cc := controllers.NewCommentController(posts)

	post := incomingRoutes.Group("/post", requireAuth)
	post.POST("/create", pc.CreatePost)
	post.DELETE("/delete/:id", pc.DeletePost)
	post.GET("/feed", pc.GetFeed)
	post.GET("/user/:userId", pc.GetPostsByUserId)

	// media ids are unguessable and images load from plain <img> tags
	incomingRoutes.GET("/media/:id", pc.GetMedia)

	comment := incomingRoutes.Group("/comment", requireAuth)
	comment.POST("/create", cc.AddComment)
	comment.GET("/post/:postId", cc.GetComments)
	comment.DELETE("/delete/:id", cc.DeleteComment)
}
