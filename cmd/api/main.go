package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/tierlink/backend/internal/cache"
	"github.com/tierlink/backend/internal/config"
	"github.com/tierlink/backend/internal/database"
	"github.com/tierlink/backend/internal/database/migrations"
	"github.com/tierlink/backend/internal/handlers"
	"github.com/tierlink/backend/internal/jobs"
	"github.com/tierlink/backend/internal/middleware"
	"github.com/tierlink/backend/internal/repository"
	"github.com/tierlink/backend/internal/routes"
	"github.com/tierlink/backend/internal/services/referral"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.LoadConfig()

	// Setup database connection
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := migrations.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Team cache is optional; without Redis the service queries directly
	var teamCache *cache.TeamCache
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if _, err := redisClient.Ping(pingCtx).Result(); err != nil {
			log.Printf("Redis unreachable, team cache disabled: %v", err)
		} else {
			teamCache = cache.NewTeamCache(redisClient, time.Duration(cfg.Redis.TeamTTLSecs)*time.Second)
		}
		cancel()
	}

	// Wire repositories and the referral service
	userRepo := repository.NewUserRepository(db)
	depositRepo := repository.NewDepositRepository(db)
	earningRepo := repository.NewEarningRepository(db)
	referralService := referral.NewService(userRepo, depositRepo, earningRepo, teamCache, cfg.Referral.LinkBase)

	// Initialize handlers
	referralHandler := handlers.NewReferralHandler(referralService)
	healthHandler := handlers.NewHealthHandler(db)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Setup rate limiter and routes
	rateLimiter := middleware.NewRateLimiter(60, 10)
	routes.RegisterRoutes(router, referralHandler, healthHandler, rateLimiter)

	// Schedule the ledger reconciliation sweep
	scheduler := gocron.NewScheduler(time.UTC)
	jobs.ScheduleReconciliation(scheduler, db, cfg.Referral.ReconcileIntervalMins)
	scheduler.StartAsync()

	// Start server
	srv := startServer(router, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	scheduler.Stop()
	rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// startServer starts the HTTP server
func startServer(router *gin.Engine, port string) *http.Server {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", port)
	return srv
}
