package main

import (
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"boost-service/internal/config"
	"boost-service/internal/database"
	"boost-service/internal/handlers"
	"boost-service/internal/models"
	"boost-service/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found in current directory, trying parent")
		if err := godotenv.Load("../.env"); err != nil {
			logrus.Info("No .env file found, using system environment variables")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Initialize Database
	database.Connect(cfg)
	database.Migrate()
	db := database.DB

	// Redis/Asynq Client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisURL})
	defer asynqClient.Close()

	// Init Services
	pixService := services.NewPixService(cfg)
	notificationService := services.NewNotificationService(db, asynqClient)
	pricingService := services.NewPricingService(db)
	commissionService := services.NewCommissionService(db)
	orderService := services.NewOrderService(db, pricingService, commissionService, notificationService, pixService)
	paymentService := services.NewPaymentService(db, pixService)
	webhookService := services.NewWebhookService(db, orderService, notificationService)
	withdrawalService := services.NewWithdrawalService(db, asynqClient, pixService, cfg.MinWithdrawalAmount)
	disputeService := services.NewDisputeService(db, notificationService)

	// Handlers
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	webhookHandler := handlers.NewWebhookHandler(webhookService, pixService)
	adminHandler := handlers.NewAdminHandler(db, commissionService, pricingService)
	disputeHandler := handlers.NewDisputeHandler(disputeService)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Initialize Gin
	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Welcome to the boost service",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.GET("/pricing/quote", adminHandler.Quote)
	r.POST("/webhooks/pix", webhookHandler.HandleProviderWebhook)

	// Authenticated
	auth := r.Group("/", handlers.RequireAuth(db))

	orders := auth.Group("/orders")
	{
		orders.POST("", handlers.RequireRole(models.RoleClient), orderHandler.Create)
		orders.GET("", orderHandler.List)
		orders.GET("/:id", orderHandler.Get)
		orders.POST("/:id/accept", handlers.RequireRole(models.RoleBooster), orderHandler.Accept)
		orders.POST("/:id/complete", orderHandler.Complete)
		orders.POST("/:id/cancel", handlers.RateLimit(5), orderHandler.Cancel)
		orders.POST("/:id/dispute", handlers.RequireRole(models.RoleClient, models.RoleBooster), disputeHandler.Open)
	}

	payments := auth.Group("/payments")
	{
		payments.POST("/pix", handlers.RateLimit(5), paymentHandler.CreatePix)
		payments.GET("/:id", paymentHandler.Get)
	}

	disputes := auth.Group("/disputes")
	{
		disputes.GET("/:id", disputeHandler.Get)
		disputes.POST("/:id/messages", disputeHandler.AddMessage)
		disputes.POST("/:id/resolve", handlers.RequireRole(models.RoleAdmin), disputeHandler.Resolve)
	}

	withdrawals := auth.Group("/withdrawals", handlers.RequireRole(models.RoleBooster, models.RoleAdmin))
	{
		withdrawals.POST("", withdrawalHandler.Request)
		withdrawals.GET("", withdrawalHandler.List)
		withdrawals.GET("/balance", withdrawalHandler.Balance)
	}

	notifications := auth.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
	}

	admin := auth.Group("/admin", handlers.RequireRole(models.RoleAdmin))
	{
		admin.GET("/commission-config", adminHandler.GetCommissionConfig)
		admin.PUT("/commission-config", adminHandler.UpdateCommissionConfig)
		admin.PUT("/boosters/:id/commission", adminHandler.SetBoosterOverride)
		admin.GET("/pricing", adminHandler.ListPricing)
		admin.POST("/pricing", adminHandler.CreatePricing)
		admin.PUT("/pricing/:id", adminHandler.UpdatePricing)
		admin.PATCH("/pricing/:id", adminHandler.PatchPricing)
		admin.DELETE("/pricing/:id", adminHandler.DeletePricing)
	}

	// Start Cron Schedulers
	sweeper := services.NewRefundSweeper(db, pixService, notificationService, cfg.RefundTimeoutHours)
	sweeper.StartScheduler()

	logrus.Infof("HTTP Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.Fatal("Failed to start server: ", err)
	}
}
