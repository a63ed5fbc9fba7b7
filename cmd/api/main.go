package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sojib-web/zap-shift-server/internal/database"
	"github.com/sojib-web/zap-shift-server/internal/handlers"
	"github.com/sojib-web/zap-shift-server/internal/ledger"
	"github.com/sojib-web/zap-shift-server/internal/middleware"
	"github.com/sojib-web/zap-shift-server/internal/services"
	"github.com/sojib-web/zap-shift-server/internal/stores"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize database
	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize Redis
	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Initialize Firebase (optional - will log warning if not configured)
	if err := services.InitFirebase(); err != nil {
		log.Printf("Firebase initialization warning: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize Stripe
	if err := services.InitStripe(); err != nil {
		log.Printf("Stripe initialization warning: %v", err)
	}

	// Payment ledger over the gorm stores
	paymentLedger := ledger.New(stores.NewParcelStore(db), stores.NewPaymentStore(db))

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Initialize router
	r := gin.Default()
	r.Use(middleware.Metrics())

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve uploaded rider documents when using local storage
	r.Static("/uploads", "/app/uploads")

	// Ops endpoints
	r.GET("/health", handlers.Health(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		// Public parcel tracking
		api.GET("/tracking/:trackingId", handlers.GetTracking(db))

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
				users.POST("/fcm-token", handlers.RegisterFCMToken(db))
				users.GET("", middleware.RequireAdmin(), handlers.ListUsers(db))
				users.PATCH("/:id/role", middleware.RequireAdmin(), handlers.UpdateUserRole(db))
			}

			// Parcel routes
			parcels := protected.Group("/parcels")
			{
				parcels.POST("", handlers.CreateParcel(db))
				parcels.GET("", handlers.ListParcels(db))
				parcels.GET("/:id", handlers.GetParcel(db))
				parcels.DELETE("/:id", handlers.DeleteParcel(db))
				parcels.GET("/:id/tracking", handlers.GetParcelTracking(db))
				parcels.POST("/:id/tracking", handlers.AddTrackingEvent(db, hub))
				parcels.PATCH("/:id/assign", middleware.RequireAdmin(), handlers.AssignRider(db, hub))
				parcels.PATCH("/:id/status", middleware.RequireRider(), handlers.UpdateParcelStatus(db, hub))
			}

			// Payment routes
			protected.POST("/payments", handlers.RecordPayment(db, paymentLedger, hub))
			protected.GET("/payments", handlers.ListPayments(paymentLedger))
			protected.POST("/create-payment-intent", handlers.CreatePaymentIntent())

			// Rider routes
			riders := protected.Group("/riders")
			{
				riders.POST("", handlers.ApplyRider(db))
				riders.GET("/pending", middleware.RequireAdmin(), handlers.PendingRiders(db))
				riders.PATCH("/:id/status", middleware.RequireAdmin(), handlers.UpdateRiderStatus(db))
				riders.GET("/active", middleware.RequireAdmin(), handlers.ActiveRiders(db))
				riders.GET("/parcels", middleware.RequireRider(), handlers.RiderParcels(db))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
