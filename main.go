package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"tripforge/config"
	"tripforge/database"
	"tripforge/handlers"
	"tripforge/services"
)

func main() {
	// Load .env file (ignored in production where env vars are set directly)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found — using environment variables")
	}

	cfg := config.Load()

	store, err := database.Connect(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer store.Close()

	// Redis is optional; without it location resolution just skips caching.
	var cache services.CodeCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		cache = services.NewRedisCodeCache(client, cfg.Redis.TTL)
		log.Printf("✅ Location cache enabled (%s)", cfg.Redis.Addr)
	}

	resolver := services.NewSonarClient(cfg.Providers.SonarKey, cache)
	flightClient := services.NewSearchAPIClient(cfg.Providers.SearchAPIKey)
	hotelClient := services.NewSearchAPIHotelClient(cfg.Providers.SearchAPIKey)
	orchestrator := services.NewOrchestrator(resolver, flightClient)
	ai := services.NewAIClient(cfg.Providers.HFKey, cfg.Providers.HFModel)

	h := handlers.New(store, orchestrator, hotelClient, ai)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// Trusted proxies (hosted deployments sit behind one)
	r.SetTrustedProxies([]string{"0.0.0.0/0"})

	// CORS — allow configured frontend origins
	frontendURLs := os.Getenv("FRONTEND_URL")
	allowedOrigins := []string{"http://localhost:5173", "http://localhost:3000"}
	if frontendURLs != "" {
		for _, u := range strings.Split(frontendURLs, ",") {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Routes
	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.POST("/search", h.Search)
		api.POST("/hotels", h.Hotels)
		api.POST("/hotels/pricing", h.HotelPricing)
		api.POST("/budget", h.Budget)
		api.POST("/itinerary", h.Itinerary)
		api.GET("/search/:id/itinerary", h.ItineraryBySearch)
		api.GET("/download/:id", h.Download)
	}

	log.Printf("🚀 TripForge backend starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
