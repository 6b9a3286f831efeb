package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/api"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/config"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/database"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/rebalance"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/repository"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/scheduler"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply pending migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	sleeveRepo := repository.NewSleeveRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	restrictionRepo := repository.NewRestrictionRepository(db)
	replacementRepo := repository.NewReplacementRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	engine := rebalance.NewEngine(log.Default())
	rebalanceService := service.NewRebalanceService(
		portfolioRepo,
		sleeveRepo,
		positionRepo,
		restrictionRepo,
		replacementRepo,
		transactionRepo,
		engine,
		cfg.Rebalance.MaxOverinvestmentPercent,
	)
	sleeveService := service.NewSleeveService(sleeveRepo, portfolioRepo)
	restrictionService := service.NewRestrictionService(restrictionRepo)

	// Broker credential storage is optional: without a fernet key the
	// settings endpoint is simply not mounted.
	var brokerSettingsService *service.BrokerSettingsService
	if cfg.Broker.FernetKey != "" {
		brokerSettingsService, err = service.NewBrokerSettingsService(settingsRepo, cfg.Broker.FernetKey)
		if err != nil {
			log.Fatalf("Failed to initialize broker settings service: %v", err)
		}
	}

	// Start the restriction expiry sweep
	sched, err := scheduler.New(restrictionService, cfg.Rebalance.RestrictionSweepSpec)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Create router
	router := api.NewRouter(systemService, rebalanceService, sleeveService, restrictionService, brokerSettingsService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
