package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"carshare/internal/app"
	"carshare/internal/auth"
	"carshare/internal/catalog"
	"carshare/internal/config"
	"carshare/internal/domain"
	"carshare/internal/fare"
	"carshare/internal/handler"
	"carshare/internal/ledger"
	internalRedis "carshare/internal/redis"
	"carshare/internal/repository/postgres"
	"carshare/internal/session"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Core state: rate table, catalog and ledger.
	policy := fare.NewPolicy(map[domain.VehicleClass]fare.Rate{
		domain.VehicleTwoWheeler:  {PerKm: cfg.Fare.TwoWheelerPerKm, PerMinute: cfg.Fare.TwoWheelerPerMinute},
		domain.VehicleFourWheeler: {PerKm: cfg.Fare.FourWheelerPerKm, PerMinute: cfg.Fare.FourWheelerPerMinute},
	})
	rideCatalog := catalog.NewCatalog(policy)
	rideLedger := ledger.NewLedger()

	if cfg.Seed.DemoRides {
		seedDemoRides(rideCatalog)
	}

	// Initialize repositories and stores.
	employeeRepo := postgres.NewEmployeeRepository(db)
	receiptRepo := postgres.NewReceiptRepository(db)
	sessionStore := internalRedis.NewSessionStore(redisClient)

	// Initialize services.
	authService := auth.NewService(employeeRepo, sessionStore, cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	notifier := session.NewNotifier()
	sessionService := session.NewService(rideCatalog, rideLedger, policy, receiptRepo, notifier)

	// Initialize handlers.
	authHandler := handler.NewAuthHandler(authService)
	rideHandler := handler.NewRideHandler(sessionService, rideCatalog, receiptRepo)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		AuthHandler: authHandler,
		RideHandler: rideHandler,
		AuthService: authService,
		RedisClient: redisClient,
		NewRelicApp: nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// seedDemoRides preloads the classic demo offerings for local development.
func seedDemoRides(rideCatalog *catalog.Catalog) {
	demo := []struct {
		origin      string
		destination string
		class       domain.VehicleClass
		distanceKm  float64
	}{
		{"Station A", "Station B", domain.VehicleTwoWheeler, 10},
		{"Station B", "Station C", domain.VehicleFourWheeler, 15},
		{"Station A", "Station C", domain.VehicleTwoWheeler, 20},
	}
	for _, d := range demo {
		id, err := rideCatalog.Register(d.origin, d.destination, d.class, d.distanceKm)
		if err != nil {
			log.Printf("failed to seed demo ride %s -> %s: %v", d.origin, d.destination, err)
			continue
		}
		log.Printf("Seeded demo ride %d: %s -> %s (%s, %.0f km)", id, d.origin, d.destination, d.class, d.distanceKm)
	}
}
