package routes

import (
	"connectly/auth"
	"connectly/controllers"
	"connectly/services"

	"github.com/gin-gonic/gin"
)

func AuthRouter(incomingRoutes *gin.Engine, users *services.UserService, authn *auth.Authenticator, secureCookie bool, requireAuth gin.HandlerFunc) {
	uc := controllers.NewUserController(users, authn, secureCookie)

	user := incomingRoutes.Group("/user")
	user.POST("/register", uc.Register)
	user.POST("/login", uc.Login)
	user.POST("/logout", uc.Logout)
	user.POST("/refresh-token", uc.RefreshToken)

	user.GET("/me", requireAuth, uc.Me)
	user.GET("/:id", requireAuth, uc.GetUserById)
}
