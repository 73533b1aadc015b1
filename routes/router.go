package routes

import (
	"net/http"
	"time"

	"connectly/auth"
	"connectly/middlewares"
	"connectly/realtime"
	"connectly/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options carries the HTTP-level settings NewRouter needs.
type Options struct {
	AllowedOrigins []string
	CookieSecure   bool
	RequestTimeout time.Duration
}

// NewRouter builds the API engine over the given services.
func NewRouter(opts Options, svc *services.Registry, authn *auth.Authenticator, hub *realtime.Hub) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(gin.Logger())
	router.Use(middlewares.RequestID())
	router.Use(middlewares.ErrorBoundary())
	corsConfig := cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middlewares.RequestIDHeader},
		ExposeHeaders:    []string{middlewares.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) == 0 {
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	}
	router.Use(cors.New(corsConfig))
	router.Use(middlewares.Timeout(opts.RequestTimeout))

	router.NoRoute(middlewares.NoRoute)
	router.NoMethod(middlewares.NoMethod)

	requireAuth := middlewares.RequireAuth(authn, svc.Users)

	HomeRoutes(router)
	AuthRouter(router, svc.Users, authn, opts.CookieSecure, requireAuth)
	MessageRouter(router, svc.Conversations, requireAuth)
	PostRouter(router, svc.Posts, requireAuth)
	LikeRouter(router, svc.Likes, requireAuth)
	NotificationRouter(router, svc.Notifications, requireAuth)
	if hub != nil {
		ChatRouter(router, hub, requireAuth)
	}

	return router
}

// HomeRoutes exposes an unauthenticated liveness check.
func HomeRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"statusCode": http.StatusOK, "message": "ok", "data": nil})
	})
}
