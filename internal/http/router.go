package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Elmamis69/jatrack/internal/config"
	"github.com/Elmamis69/jatrack/internal/http/handler"
	httpmiddleware "github.com/Elmamis69/jatrack/internal/http/middleware"
	"github.com/Elmamis69/jatrack/internal/middleware"
)

// NewRouter wires gin routes and middleware. Auth routes are public;
// everything under /api requires an established identity. CORS runs
// before authentication so preflights always pass.
func NewRouter(cfg config.Config, authHandler *handler.AuthHandler, appHandler *handler.ApplicationHandler, debugHandler *handler.DebugHandler, authMiddleware *httpmiddleware.Auth, rateLimiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(authMiddleware.Authenticate)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authMiddleware.RequireAuth, authHandler.Me)
	}

	api := r.Group("/api", authMiddleware.RequireAuth)
	{
		applications := api.Group("/applications")
		{
			applications.GET("", appHandler.Search)
			applications.POST("", appHandler.Create)
			applications.GET("/:id", appHandler.Get)
			applications.PUT("/:id", appHandler.Update)
			applications.DELETE("/:id", appHandler.Delete)
		}

		api.GET("/debug/headers", debugHandler.Headers)
	}

	return r
}
