package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/amansoomro062/codesign/internal/config"
	"github.com/amansoomro062/codesign/internal/middleware"
	"github.com/amansoomro062/codesign/internal/modules/handler"
	"github.com/amansoomro062/codesign/internal/modules/serializer"
	"github.com/amansoomro062/codesign/internal/realtime"
	"github.com/amansoomro062/codesign/internal/telemetry"
)

type RouterDeps struct {
	Config         *config.Config
	Log            *zap.Logger
	Redis          redis.Cmdable
	Authn          middleware.TokenAuthenticator
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	ProjectHandler *handler.ProjectHandler
	DesignHandler  *handler.DesignHandler
	AIHandler      *handler.AIHandler
	StatsHandler   *handler.StatsHandler
	Realtime       *realtime.Handler
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		d.Log.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, serializer.DBErr("", fmt.Errorf("panic: %v", recovered)))
	}))

	if telemetry.Enabled(d.Config) {
		r.Use(telemetry.GinMiddleware(d.Config.App.Name))
		r.Use(telemetry.TraceIDMiddleware())
	}

	r.Use(middleware.ZapLogger(d.Log))
	r.Use(middleware.CORS(d.Config.App.ClientURL))

	r.NoRoute(handler.NoRoute)
	r.GET("/health", handler.Health)

	// websocket authenticates itself during the upgrade
	r.GET("/ws", d.Realtime.Serve)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(d.Redis, d.Config.RateLimit.Max, d.Config.RateLimitWindow(), d.Log))

	// public
	{
		auth := api.Group("/auth")
		auth.POST("/register", d.AuthHandler.Register)
		auth.POST("/login", d.AuthHandler.Login)

		api.GET("/stats/github", d.StatsHandler.GetGitHubStats)
		api.GET("/users/:id", d.UserHandler.GetUser)
	}

	authed := api.Group("")
	authed.Use(middleware.UserAuth(d.Authn))
	{
		users := authed.Group("/users")
		{
			users.GET("/me", d.UserHandler.GetMe)
			users.PUT("/me", d.UserHandler.UpdateMe)
			users.DELETE("/me", d.UserHandler.DeleteMe)
			users.PUT("/me/password", d.UserHandler.ChangePassword)
			users.GET("/search/:query", d.UserHandler.SearchUsers)
		}

		projects := authed.Group("/projects")
		{
			projects.GET("", d.ProjectHandler.ListProjects)
			projects.POST("", d.ProjectHandler.CreateProject)
			projects.GET("/:id", d.ProjectHandler.GetProject)
			projects.PUT("/:id", d.ProjectHandler.UpdateProject)
			projects.DELETE("/:id", d.ProjectHandler.DeleteProject)
			projects.GET("/:id/activity", d.ProjectHandler.GetProjectActivity)

			projects.POST("/:id/collaborators", d.ProjectHandler.AddCollaborator)
			projects.POST("/:id/collaborators/accept", d.ProjectHandler.AcceptInvitation)
			projects.DELETE("/:id/collaborators/:userId", d.ProjectHandler.RemoveCollaborator)
		}

		designs := authed.Group("/designs")
		{
			designs.GET("/project/:projectId", d.DesignHandler.ListProjectDesigns)
			designs.POST("", d.DesignHandler.CreateDesign)
			designs.GET("/:id", d.DesignHandler.GetDesign)
			designs.PUT("/:id", d.DesignHandler.UpdateDesign)
			designs.DELETE("/:id", d.DesignHandler.DeleteDesign)
			designs.PUT("/:id/settings", d.DesignHandler.UpdateDesignSettings)
			designs.POST("/:id/versions", d.DesignHandler.CreateVersion)
			designs.GET("/:id/versions", d.DesignHandler.ListVersions)
			designs.GET("/:id/activity", d.DesignHandler.GetDesignActivity)
		}

		ai := authed.Group("/ai")
		{
			ai.POST("/suggestions", d.AIHandler.Suggestions)
			ai.POST("/generate-component", d.AIHandler.GenerateComponent)
			ai.POST("/auto-layout", d.AIHandler.AutoLayout)
			ai.POST("/accessibility", d.AIHandler.Accessibility)
			ai.POST("/export", d.AIHandler.Export)
		}
	}
	return r
}
