package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/goaltrace-dev/goaltrace/internal/handlers"
	"github.com/goaltrace-dev/goaltrace/internal/middleware"
	"github.com/goaltrace-dev/goaltrace/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:trace_id", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.PATCH("/me", middleware.AuthMiddleware(), handlers.UpdateProfile)
		}

		traces := api.Group("/traces", middleware.AuthMiddleware())
		{
			traces.POST("", handlers.CreateTrace)
			traces.GET("", handlers.ListTraces)
			traces.GET("/search", handlers.SearchPublicTraces)
			traces.PATCH("/:trace_id", handlers.UpdateTrace)
			traces.DELETE("/:trace_id", handlers.DeleteTrace)

			// Node endpoints
			traces.POST("/:trace_id/nodes", handlers.AddNode)
			traces.GET("/:trace_id/nodes", handlers.ListNodes)
			traces.PUT("/:trace_id/nodes/:node_id", handlers.EditNode)
			traces.DELETE("/:trace_id/nodes/:node_id", handlers.DeleteNode)
			traces.POST("/:trace_id/nodes/:node_id/status", handlers.ToggleStatus)

			// Node sub-resources
			traces.GET("/:trace_id/nodes/:node_id/note", handlers.GetNote)
			traces.PUT("/:trace_id/nodes/:node_id/note", handlers.UpsertNote)
			traces.POST("/:trace_id/nodes/:node_id/links", handlers.AddLink)
			traces.GET("/:trace_id/nodes/:node_id/links", handlers.ListLinks)
			traces.DELETE("/:trace_id/nodes/:node_id/links/:link_id", handlers.DeleteLink)
			traces.POST("/:trace_id/nodes/:node_id/attachments", handlers.UploadAttachment)
			traces.GET("/:trace_id/nodes/:node_id/attachments", handlers.ListAttachments)
			traces.DELETE("/:trace_id/nodes/:node_id/attachments/:attachment_id", handlers.DeleteAttachment)
		}

		jobs := api.Group("/jobs", middleware.ServiceKeyMiddleware())
		{
			jobs.POST("/deadline-notifications", handlers.TriggerDeadlineDispatch)
		}
	}

	return r
}
