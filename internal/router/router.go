package router

import (
	"time"

	"github.com/onegreenvn/booking-followup-backend/internal/handlers"
	"github.com/onegreenvn/booking-followup-backend/internal/middleware"
	"github.com/onegreenvn/booking-followup-backend/internal/services"
	"github.com/onegreenvn/booking-followup-backend/internal/services/excel"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Auth holds the credentials the HTTP surface checks
type Auth struct {
	// JWTSecret verifies operator bearer tokens
	JWTSecret string
	// LifecycleAPIKeyHash is the bcrypt hash of the booking store's API key
	LifecycleAPIKeyHash string
}

// SetupRouter configures the Gin router over the workflow services
func SetupRouter(svcs *services.Services, auth Auth) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	bearerTokenMiddleware := middleware.NewBearerTokenMiddleware(auth.JWTSecret)
	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(auth.LifecycleAPIKeyHash)

	workflowHandler := handlers.NewWorkflowHandler(svcs.Workflows)
	bulkHandler := handlers.NewBulkHandler(svcs.Backfill)
	logHandler := handlers.NewWorkflowLogHandler(svcs.Logs, excel.NewExcelService(), svcs.Events)
	eventHandler := handlers.NewBookingEventHandler(svcs.Scheduler)
	bookingHandler := handlers.NewBookingHandler(svcs.Bookings)
	templateHandler := handlers.NewTemplateHandler(svcs.Resolver)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	logrus.Info("Swagger UI endpoint registered at /swagger/index.html")

	// API v1 routes
	api := r.Group("/api/v1")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})

		// Booking store ingest
		events := api.Group("/booking-events")
		events.Use(apiKeyMiddleware.APIKeyAuthMiddleware())
		{
			events.POST("", eventHandler.PostBookingEvent)
		}
		api.PUT("/bookings/:id", apiKeyMiddleware.APIKeyAuthMiddleware(), bookingHandler.PutBooking)

		// Operator routes
		protected := api.Group("")
		protected.Use(bearerTokenMiddleware.BearerTokenAuthMiddleware())
		{
			workflows := protected.Group("/workflows")
			{
				workflows.GET("", workflowHandler.GetWorkflows)
				workflows.POST("", workflowHandler.CreateWorkflow)
				workflows.GET("/bulk/bookings-by-status", bulkHandler.GetBookingsByStatus)
				workflows.POST("/bulk/trigger-by-status", bulkHandler.TriggerByStatus)
				workflows.GET("/:id", workflowHandler.GetWorkflow)
				workflows.PUT("/:id", workflowHandler.UpdateWorkflow)
				workflows.DELETE("/:id", workflowHandler.DeleteWorkflow)
			}

			logs := protected.Group("/workflow-logs")
			{
				logs.GET("", logHandler.GetLogs)
				logs.GET("/stats", logHandler.GetStats)
				logs.GET("/export", logHandler.ExportLogs)
				logs.GET("/stream", logHandler.StreamLogs)
				logs.GET("/:logId", logHandler.GetLog)
				logs.POST("/:logId/send-now", logHandler.SendNow)
				logs.POST("/:logId/retry", logHandler.Retry)
			}

			protected.GET("/bookings/:id", bookingHandler.GetBooking)

			templates := protected.Group("/templates")
			{
				templates.GET("", templateHandler.GetTemplates)
				templates.POST("/:templateId/resolve", templateHandler.ResolveTemplate)
			}
		}
	}

	return r
}
