package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/fiscal-coupon-api/internal/config"
	"github.com/fairyhunter13/fiscal-coupon-api/internal/handler"
	"github.com/fairyhunter13/fiscal-coupon-api/internal/repository"
	"github.com/fairyhunter13/fiscal-coupon-api/internal/service"
	"github.com/fairyhunter13/fiscal-coupon-api/internal/telemetry"
	rules "github.com/fairyhunter13/fiscal-coupon-api/internal/validator"
	"github.com/fairyhunter13/fiscal-coupon-api/pkg/database"
)

func main() {
	// Load configuration first (.env, then process environment)
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("failed to apply schema")
		}
	}

	telemetry.InitMetrics()

	app := handler.NewApp("Fiscal Coupon API")

	// Middleware. Telemetry wraps recover so recovered panics are counted as 5xx.
	app.Use(telemetry.Middleware())
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	app.Get("/metrics", telemetry.MetricsHandler())

	// Shared validator with the cpf/cnpj/notblank rules registered
	validate := rules.New()

	// Repositories
	clientRepo := repository.NewClientRepository(pool)
	restaurantRepo := repository.NewRestaurantRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)

	// Services
	clientService := service.NewClientService(pool, clientRepo)
	restaurantService := service.NewRestaurantService(pool, restaurantRepo)
	couponService := service.NewCouponService(pool, couponRepo, clientRepo, restaurantRepo)

	handler.RegisterRoutes(app, handler.Handlers{
		Health:      handler.NewHealthHandler(pool),
		Clients:     handler.NewClientHandler(clientService, validate),
		Restaurants: handler.NewRestaurantHandler(restaurantService, validate),
		Coupons:     handler.NewCouponHandler(couponService, validate),
	})

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
