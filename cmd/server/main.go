package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/ecomcore/storefront/internal/cache"
	"github.com/ecomcore/storefront/internal/catalog"
	"github.com/ecomcore/storefront/internal/config"
	"github.com/ecomcore/storefront/internal/domain"
	"github.com/ecomcore/storefront/internal/gateway"
	"github.com/ecomcore/storefront/internal/publisher"
	"github.com/ecomcore/storefront/internal/repository"
	"github.com/ecomcore/storefront/internal/server"
	"github.com/ecomcore/storefront/internal/service"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.Println("storefront starting...")
	var wg sync.WaitGroup

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Orders database
	creds := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}

	repo, err := repository.NewRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Product catalog
	cat, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer cat.Close()

	if err := cat.RunMigrations(cfg.CatalogMigrations); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}

	// Order list cache
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	orderCache := cache.NewRedisCache(redisClient)

	// Payment gateway
	var gw gateway.PaymentGateway
	switch cfg.GatewayMode {
	case "http":
		gw = gateway.NewHTTPGateway(cfg.GatewayBaseURL, cfg.GatewayTimeout)
	default:
		gw = gateway.NewSandbox()
	}
	log.Printf("payment gateway mode: %s", cfg.GatewayMode)

	// Outbox publisher
	poller := publisher.NewOutboxPoller(repo, strings.Split(cfg.KafkaBrokers, ",")...)
	defer poller.Close()
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(pollerCtx)
	}()

	// Services and HTTP surface
	rules := domain.TransitionRules{CancelledTerminal: cfg.StatusCancelledTerminal}
	checkoutService := service.NewCheckoutService(repo, cat, gw, orderCache, cfg.Currency)
	orderService := service.NewOrderService(repo, orderCache, rules)

	router := server.NewRouter(
		server.NewCheckoutHandler(checkoutService, cfg.RequestTimeout),
		server.NewOrdersHandler(orderService, cfg.RequestTimeout),
		cfg.JWTSecret,
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	pollerCancel()
	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		log.Println("outbox poller stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("shutdown timeout exceeded, exiting")
	}

	log.Println("server exited")
}
