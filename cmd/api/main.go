package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/kaumahan/harvest-market-api/internal/config"
	"github.com/kaumahan/harvest-market-api/internal/handler"
	"github.com/kaumahan/harvest-market-api/internal/middleware"
	"github.com/kaumahan/harvest-market-api/internal/repository"
	"github.com/kaumahan/harvest-market-api/internal/service"
	"github.com/kaumahan/harvest-market-api/internal/storage"
	"github.com/kaumahan/harvest-market-api/internal/worker"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := worker.SetupRabbitMQ(amqpCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	// Media storage
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Error("init media storage", "error", err)
		os.Exit(1)
	}
	log.Info("media storage ready", "driver", cfg.Storage.Driver)

	// Repositories
	accountRepo := repository.NewAccountRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	cartRepo := repository.NewCartRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)
	reviewRepo := repository.NewReviewRepository(dbPool)
	statsRepo := repository.NewStatsRepository(dbPool)

	// Services
	authSvc := service.NewAuthService(accountRepo, store, cfg.JWT.Secret, cfg.JWT.Expiration)
	catalogSvc := service.NewCatalogService(productRepo, accountRepo, reviewRepo, store, redisClient)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	orderSvc := service.NewOrderService(orderRepo, cartRepo, productRepo, accountRepo, amqpCh)
	reviewSvc := service.NewReviewService(reviewRepo, productRepo, redisClient)
	sellerSvc := service.NewSellerService(productRepo, orderRepo, reviewRepo, store)
	adminSvc := service.NewAdminService(accountRepo, orderRepo, statsRepo)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	productH := handler.NewProductHandler(catalogSvc)
	cartH := handler.NewCartHandler(cartSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	reviewH := handler.NewReviewHandler(reviewSvc)
	sellerH := handler.NewSellerHandler(sellerSvc, orderSvc)
	adminH := handler.NewAdminHandler(adminSvc)
	healthH := handler.NewHealthHandler(dbPool, redisClient, amqpConn)

	// Worker
	notifyWorker := worker.NewNotificationWorker(amqpCh, orderRepo, accountRepo, redisClient, log)

	// Router
	router := gin.Default()
	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)

	if cfg.Storage.Driver == "local" {
		router.Static("/media", cfg.Storage.LocalRoot)
	}

	authMW := middleware.AuthMiddleware(cfg.JWT.Secret)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)

		products := v1.Group("/products")
		products.GET("", productH.List)
		products.GET("/:id", productH.Get)
		products.GET("/:id/reviews", reviewH.ListByProduct)
		products.POST("/:id/reviews", authMW, middleware.RequireBuyer(), reviewH.Submit)

		selling := products.Group("", authMW, middleware.RequireApprovedSeller())
		selling.POST("", productH.Create)
		selling.PUT("/:id", productH.Update)
		selling.DELETE("/:id", productH.Delete)

		cart := v1.Group("/cart", authMW, middleware.RequireBuyer())
		cart.GET("", cartH.GetCart)
		cart.POST("/items", cartH.AddItem)
		cart.DELETE("/items/:id", cartH.RemoveItem)

		checkout := v1.Group("/checkout", authMW, middleware.RequireBuyer())
		checkout.POST("", orderH.Checkout)
		checkout.POST("/direct", orderH.DirectCheckout)

		orders := v1.Group("/orders", authMW)
		orders.GET("", middleware.RequireBuyer(), orderH.ListOrders)
		orders.GET("/:id", orderH.GetOrder)

		seller := v1.Group("/seller", authMW, middleware.RequireApprovedSeller())
		seller.GET("/dashboard", sellerH.Dashboard)
		seller.GET("/orders", sellerH.ListOrders)
		seller.PUT("/orders/:id/status", sellerH.UpdateOrderStatus)

		admin := v1.Group("/admin", authMW, middleware.RequireStaff())
		admin.GET("/dashboard", adminH.Dashboard)
		admin.GET("/sellers/pending", adminH.PendingSellers)
		admin.POST("/sellers/:id/approve", adminH.ApproveSeller)
		admin.POST("/sellers/:id/reject", adminH.RejectSeller)
		admin.POST("/sellers/approve-all", adminH.ApproveAllSellers)
		admin.PUT("/reviews/:id/moderation", reviewH.Moderate)
		admin.GET("/export/orders", adminH.ExportOrders)
	}

	if err := notifyWorker.Start(ctx); err != nil {
		log.Error("start notification worker", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	notifyWorker.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()
	log.Info("server stopped")
}
