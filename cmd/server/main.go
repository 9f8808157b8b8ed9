package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/onegreenvn/booking-followup-backend/docs"
	"github.com/onegreenvn/booking-followup-backend/internal/config"
	"github.com/onegreenvn/booking-followup-backend/internal/database"
	"github.com/onegreenvn/booking-followup-backend/internal/router"
	"github.com/onegreenvn/booking-followup-backend/internal/services"
	"github.com/onegreenvn/booking-followup-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Set Swagger base path dynamically
	if cfg.BasePath != "" {
		docs.SwaggerInfo.BasePath = cfg.BasePath
	}

	configureLogging(cfg.LogLevel)

	utils.InitSentry(cfg.SentryDSN)
	defer utils.FlushSentry()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Without RabbitMQ, scheduling and the API keep working; dispatch answers 503
	var dispatcher services.Dispatcher
	rabbitMQService, err := services.NewRabbitMQService(cfg.RabbitMQ, cfg.RabbitMQ.WorkflowMessagesQueue, cfg.RabbitMQ.BookingEventsQueue)
	if err != nil {
		logrus.Warnf("Failed to initialize RabbitMQ: %v", err)
	} else {
		defer rabbitMQService.Close()
		dispatcher = services.NewAMQPDispatcher(rabbitMQService, cfg.RabbitMQ.WorkflowMessagesQueue)
	}

	svcs := services.New(db, dispatcher, services.Options{
		DispatchLease:       cfg.Dispatch.Lease,
		DispatchBatchSize:   cfg.Dispatch.BatchSize,
		BackfillConcurrency: cfg.BackfillConcurrency,
	})

	if rabbitMQService != nil {
		consumer := services.NewLifecycleConsumer(rabbitMQService, svcs.Scheduler, cfg.RabbitMQ.BookingEventsQueue)
		if err := consumer.Start(ctx); err != nil {
			logrus.Warnf("Failed to start lifecycle consumer: %v", err)
		} else {
			defer consumer.Stop()
		}

		worker := services.NewDispatchWorker(svcs.Dispatch, cfg.Dispatch.Schedule)
		if err := worker.Start(ctx); err != nil {
			logrus.Fatalf("Failed to start dispatch worker: %v", err)
		}
		defer worker.Stop()
	}

	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(svcs, router.Auth{
		JWTSecret:           cfg.JWTSecret,
		LifecycleAPIKeyHash: cfg.LifecycleAPIKeyHash,
	})

	// Configure HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logrus.Infof("Server starting on port %s", cfg.Port)
		logrus.Infof("API Health Check: http://localhost:%s/api/v1/health", cfg.Port)
		logrus.Infof("Swagger UI: http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited properly")
}

func configureLogging(logLevel string) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
