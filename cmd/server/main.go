package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging
	"time"    // Token lifetimes

	"bakery_system/internal/api"        // Custom package for API handlers
	"bakery_system/internal/config"     // Custom package for configuration
	"bakery_system/internal/domain"     // Custom package for domain models
	"bakery_system/internal/middleware" // Custom package for middleware

	"github.com/gin-contrib/cors"                              // CORS middleware
	"github.com/gin-gonic/gin"                                 // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp"  // Prometheus metrics endpoint
	"github.com/redis/go-redis/v9"                             // Redis client
	"github.com/sirupsen/logrus"                               // Logrus for structured logging
	"gorm.io/driver/mysql"                                     // MySQL driver for GORM
	"gorm.io/gorm"                                             // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	tokenTTL := time.Duration(cfg.TokenTTL) * time.Minute // Access token lifetime

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// CORS for browser clients
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Request metrics
	r.Use(middleware.PrometheusMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := middleware.JWTAuthMiddleware(db, cfg.JWTSecret) // Shared auth middleware

	// Auth routes
	authGroup := r.Group("/auth")
	authGroup.POST("/register", api.RegisterHandler(db, cfg.JWTSecret, tokenTTL)) // Registration endpoint
	authGroup.POST("/login", api.LoginHandler(db, cfg.JWTSecret, tokenTTL))       // Login endpoint
	authGroup.POST("/token", api.TokenHandler(db, cfg.JWTSecret, tokenTTL))       // OAuth2-style token endpoint
	authGroup.GET("/me", auth, api.MeHandler(db))                                 // Current profile endpoint

	// User routes
	userGroup := r.Group("/users")
	userGroup.Use(auth)
	userGroup.GET("", middleware.RequireAdmin(), api.ListUsersHandler(db))
	userGroup.GET("/role/:role", middleware.RequireAdmin(), api.ListUsersByRoleHandler(db))
	userGroup.GET("/:id", api.GetUserHandler(db))
	userGroup.PUT("/:id", api.UpdateUserHandler(db))
	userGroup.DELETE("/:id", middleware.RequireAdmin(), api.DeactivateUserHandler(db))
	userGroup.POST("/:id/activate", middleware.RequireAdmin(), api.ActivateUserHandler(db))

	// Category routes; reads are public, writes are admin only
	categoryGroup := r.Group("/categories")
	categoryGroup.GET("", api.ListCategoriesHandler(db, redisClient))
	categoryGroup.GET("/:id", api.GetCategoryHandler(db))
	categoryGroup.POST("", auth, middleware.RequireAdmin(), api.CreateCategoryHandler(db, redisClient))
	categoryGroup.PUT("/:id", auth, middleware.RequireAdmin(), api.UpdateCategoryHandler(db, redisClient))
	categoryGroup.DELETE("/:id", auth, middleware.RequireAdmin(), api.DeleteCategoryHandler(db, redisClient))

	// Product routes; reads are public, writes gated by role/ownership
	productGroup := r.Group("/products")
	productGroup.GET("", api.ListProductsHandler(db, redisClient))
	productGroup.GET("/baker/my-products", auth, middleware.RequireRole(domain.RoleBaker), api.MyProductsHandler(db))
	productGroup.GET("/:id", api.GetProductHandler(db))
	productGroup.POST("", auth, middleware.RequireRole(domain.RoleBaker), api.CreateProductHandler(db, redisClient))
	productGroup.PUT("/:id", auth, api.UpdateProductHandler(db, redisClient))
	productGroup.DELETE("/:id", auth, api.DeleteProductHandler(db, redisClient))
	productGroup.PATCH("/:id/stock", auth, middleware.RequireRole(domain.RoleBaker), api.UpdateStockHandler(db, redisClient))

	// Order routes
	orderGroup := r.Group("/orders")
	orderGroup.Use(auth)
	orderGroup.POST("", api.CreateOrderHandler(db, redisClient))
	orderGroup.GET("", api.ListOrdersHandler(db))
	orderGroup.GET("/customer/my-orders", api.MyOrdersHandler(db))
	orderGroup.GET("/status/:status", middleware.RequireRole(domain.RoleBaker), api.OrdersByStatusHandler(db))
	orderGroup.GET("/:id", api.GetOrderHandler(db))
	orderGroup.PUT("/:id/status", api.UpdateOrderStatusHandler(db, redisClient))
	orderGroup.PATCH("/:id/status", api.UpdateOrderStatusHandler(db, redisClient))

	// Delivery routes
	deliveryGroup := r.Group("/deliveries")
	deliveryGroup.Use(auth)
	deliveryGroup.POST("", middleware.RequireAdmin(), api.CreateDeliveryHandler(db))
	deliveryGroup.GET("", api.ListDeliveriesHandler(db))
	deliveryGroup.GET("/delivery-person/my-deliveries", middleware.RequireRole(domain.RoleDeliveryPerson), api.MyDeliveriesHandler(db))
	deliveryGroup.GET("/pending/list", middleware.RequireAdmin(), api.PendingDeliveriesHandler(db))
	deliveryGroup.GET("/personnel/available", middleware.RequireAdmin(), api.AvailablePersonnelHandler(db))
	deliveryGroup.GET("/:id", api.GetDeliveryHandler(db))
	deliveryGroup.PATCH("/:id/assign", middleware.RequireAdmin(), api.AssignDeliveryHandler(db))
	deliveryGroup.PATCH("/:id/status", api.UpdateDeliveryStatusHandler(db))

	// Dashboard routes
	dashboardGroup := r.Group("/dashboard")
	dashboardGroup.Use(auth)
	dashboardGroup.GET("/stats", middleware.RequireAdmin(), api.AdminStatsHandler(db, redisClient))
	dashboardGroup.GET("/baker/stats", middleware.RequireRole(domain.RoleBaker), api.BakerStatsHandler(db))
	dashboardGroup.GET("/delivery-person/stats", middleware.RequireRole(domain.RoleDeliveryPerson), api.DeliveryPersonStatsHandler(db))
	dashboardGroup.GET("/customer/stats", api.CustomerStatsHandler(db))

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
