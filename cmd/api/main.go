package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cargo-shop/internal/catalog"
	"cargo-shop/internal/config"
	"cargo-shop/internal/database"
	"cargo-shop/internal/handler"
	"cargo-shop/internal/idp"
	"cargo-shop/internal/payment"
	"cargo-shop/internal/repository"
	"cargo-shop/internal/router"
	"cargo-shop/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting cargo-shop API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	// Optional catalogue seed import with S3 and local fallback
	if cfg.Seed.Enabled {
		fileLoader := catalog.NewFileLoader(logger)
		var seedLoader catalog.Loader = fileLoader

		if cfg.Seed.S3Enabled {
			s3Loader, err := catalog.NewS3Loader(ctx, cfg.Seed.Bucket, cfg.Seed.Region, logger)
			if err != nil {
				logger.Warn().
					Err(err).
					Msg("failed to initialise S3 loader, falling back to local file system only")
			} else {
				seedLoader = catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.Seed.Prefix, true, logger)
			}
		}

		importer := catalog.NewImporter(seedLoader, productRepo, logger)
		if err := importer.Import(ctx, cfg.Seed.FilePaths); err != nil {
			return fmt.Errorf("failed to import catalogue seed: %w", err)
		}
	}

	// Initialize external clients
	idpClient := idp.NewClient(cfg.IdP.BaseURL, cfg.IdP.Token, logger)
	gateway := payment.NewGateway(payment.Config{
		APIKey:        cfg.Payment.APIKey,
		APIBaseURL:    cfg.Payment.APIBaseURL,
		ClientBaseURL: cfg.Payment.ClientBaseURL,
		Currency:      cfg.Payment.Currency,
	}, logger)

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	userService := service.NewUserService(userRepo, idpClient, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, gateway, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	orderHandler := handler.NewOrderHandler(orderService, cfg.Payment.WebhookSecret, logger)

	// Initialize router
	mux := router.New(productHandler, orderHandler, userService, cfg.Auth.JWTSecret, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
