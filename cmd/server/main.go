package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/fleetguard360/busbooking/internal/auth"
	"github.com/fleetguard360/busbooking/internal/graphql"
	"github.com/fleetguard360/busbooking/internal/handler"
	"github.com/fleetguard360/busbooking/internal/ratelimit"
	"github.com/fleetguard360/busbooking/internal/reservations"
	"github.com/fleetguard360/busbooking/internal/session"
	"github.com/fleetguard360/busbooking/internal/trips"
)

type Config struct {
	Port            string
	BackendEndpoint string
	RedisEnabled    bool
	RedisHost       string
	RedisPort       string
	SessionTTL      time.Duration
}

func main() {
	cfg := loadConfig()
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	limiter := ratelimit.NewOperationLimiterWithDefaults()
	limiter.SetOperationLimit(graphql.SearchTrips.Name, 20, 30)
	limiter.SetOperationLimit(graphql.ListReservations.Name, 15, 25)
	limiter.SetOperationLimit(graphql.CancelReservation.Name, 5, 10)

	client := graphql.NewClient(graphql.Config{
		Endpoint: cfg.BackendEndpoint,
		Retry:    graphql.DefaultRetryPolicy(),
		Limiter:  limiter,
	})
	log.Printf("Booking backend endpoint: %s", cfg.BackendEndpoint)

	var sessions session.Store
	if cfg.RedisEnabled {
		redisStore, err := session.NewRedisStore(session.RedisConfig{
			Host: cfg.RedisHost,
			Port: cfg.RedisPort,
			TTL:  cfg.SessionTTL,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		sessions = redisStore
		log.Printf("Redis session store enabled (host: %s:%s, TTL: %v)", cfg.RedisHost, cfg.RedisPort, cfg.SessionTTL)
	} else {
		sessions = session.NewMemoryStore()
		log.Println("In-memory session store enabled")
	}
	defer sessions.Close()

	tripController := trips.NewController(client)
	reservationController := reservations.NewController(client)
	cancelWorkflow := reservations.NewCancelWorkflow(reservationController, client)
	authService := auth.NewService(client, sessions)

	tripsHandler := handler.NewTripsHandler(tripController)
	reservationsHandler := handler.NewReservationsHandler(reservationController, cancelWorkflow, sessions)
	authHandler := handler.NewAuthHandler(authService)

	api := e.Group("/api/v1")
	api.POST("/trips/search", tripsHandler.Search)
	api.GET("/trips", tripsHandler.Page)
	api.GET("/reservations", reservationsHandler.List)
	api.POST("/reservations/:id/cancel", reservationsHandler.BeginCancel)
	api.POST("/reservations/:id/cancel/confirm", reservationsHandler.ConfirmCancel)
	api.DELETE("/reservations/:id/cancel", reservationsHandler.DeclineCancel)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/register", authHandler.Register)
	e.GET("/health", handler.HealthHandler)

	log.Printf("Starting booking gateway on port %s", cfg.Port)

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func loadConfig() Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return Config{
		Port:            getEnv("PORT", "3000"),
		BackendEndpoint: getEnv("BACKEND_ENDPOINT", "http://localhost:8080/graphql"),
		RedisEnabled:    getEnvBool("REDIS_ENABLED", false),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		SessionTTL:      getEnvDuration("SESSION_TTL", 30*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
