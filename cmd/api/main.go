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

	"schoolhub-warehouse-api/internal/cache"
	"schoolhub-warehouse-api/internal/config"
	"schoolhub-warehouse-api/internal/handler"
	"schoolhub-warehouse-api/internal/repository"
	"schoolhub-warehouse-api/internal/router"
	"schoolhub-warehouse-api/internal/service"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting SchoolHub Warehouse API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize warehouse repositories based on config
	var itemRepo repository.ItemRepository
	var transactionRepo repository.TransactionRepository

	switch cfg.WarehouseDB.Type {
	case "sqlite":
		store, err := repository.OpenSQLite(cfg.WarehouseDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		defer store.Close()
		itemRepo = store.Items()
		transactionRepo = store.Transactions()
		log.Println("SQLite warehouse repositories initialized")
	default: // memory
		itemRepo = repository.NewMemoryItemRepository()
		transactionRepo = repository.NewMemoryTransactionRepository()
		log.Println("In-memory warehouse repositories initialized")
	}

	// Seed demo data (development convenience)
	if cfg.App.SeedDemoData {
		if err := repository.SeedDemoData(context.Background(), itemRepo, transactionRepo); err != nil {
			log.Printf("Warning: demo data seed failed: %v", err)
		} else {
			log.Println("Demo warehouse data seeded")
		}
	}

	// Initialize MySQL connection for the decision audit trail (optional)
	var auditRepo repository.AuditRepository
	if cfg.AuditDB.Enabled {
		auditDB, err := sql.Open("mysql", cfg.AuditDB.DSN())
		if err != nil {
			log.Printf("Warning: MySQL connection failed: %v", err)
		} else {
			auditDB.SetMaxOpenConns(10)
			auditDB.SetMaxIdleConns(5)
			auditDB.SetConnMaxLifetime(5 * time.Minute)

			if err := auditDB.Ping(); err != nil {
				log.Printf("Warning: MySQL ping failed: %v", err)
				auditDB.Close()
			} else {
				defer auditDB.Close()
				repo, err := repository.NewMySQLAuditRepository(auditDB)
				if err != nil {
					log.Printf("Warning: audit repository initialization failed: %v", err)
				} else {
					auditRepo = repo
					log.Println("MySQL audit repository initialized")
				}
			}
		}
	}

	// Initialize stats cache based on config
	var statsCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis connection failed, falling back to memory cache: %v", err)
			memCache := cache.NewMemoryCache()
			defer memCache.Close()
			statsCache = memCache
		} else {
			defer redisCache.Close()
			statsCache = redisCache
			log.Println("Redis cache initialized")
		}
	default: // memory
		memCache := cache.NewMemoryCache()
		defer memCache.Close()
		statsCache = memCache
		log.Println("Memory cache initialized")
	}

	// Initialize services
	warehouseService := service.NewWarehouseService(itemRepo, transactionRepo)
	if warehouseService == nil {
		log.Fatal("Failed to initialize warehouse service")
	}
	warehouseService.SetStatsCache(statsCache, cfg.Cache.TTL)
	if auditRepo != nil {
		warehouseService.SetAudit(auditRepo)
	}

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Version)
	warehouseHandler := handler.NewWarehouseHandler(warehouseService, cfg.App.DefaultUser)
	dashboardHandler := handler.NewDashboardHandler(warehouseService)

	// Create router
	r := router.New(router.Config{
		Handler:          healthHandler,
		WarehouseHandler: warehouseHandler,
		DashboardHandler: dashboardHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
