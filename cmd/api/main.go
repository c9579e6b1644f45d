package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chainraise/backend/internal/config"
	"github.com/chainraise/backend/internal/db"
	"github.com/chainraise/backend/internal/events"
	apphttp "github.com/chainraise/backend/internal/http"
	"github.com/chainraise/backend/internal/http/handlers"
	"github.com/chainraise/backend/internal/ledger"
	"github.com/chainraise/backend/internal/repositories"
	"github.com/chainraise/backend/internal/services"
	"github.com/chainraise/backend/migrations"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database (write-submission audit trail)
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis (rate limiting + event fan-out)
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Contract gateway
	gateway := ledger.NewGateway(ledger.GatewayOptions{
		BaseURL:         cfg.GatewayBaseURL,
		ChainID:         cfg.ChainID,
		ContractAddress: cfg.ContractAddress,
		ClientID:        cfg.ClientID,
		SecretKey:       cfg.SecretKey,
		Timeout:         cfg.WriteTimeout,
	}, log)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Repositories
	auditRepo := repositories.NewAuditRepo(pool)

	// Services
	campaignService := services.NewCampaignService(gateway, publisher, log)
	donationService := services.NewDonationService(gateway, campaignService, auditRepo, publisher, cfg, log)
	creationService := services.NewCreationService(gateway, campaignService, auditRepo, publisher, cfg, log)

	// First snapshot. A failed initial read is survivable: the service
	// starts with an empty list and the background refresh retries.
	if err := campaignService.Reload(ctx); err != nil {
		log.Warn("initial campaign load failed", zap.Error(err))
	}
	campaignService.StartRefresh(ctx, cfg.RefreshInterval)

	// Handlers
	authHandler := handlers.NewAuthHandler(cfg, log)
	campaignHandler := handlers.NewCampaignHandler(campaignService, creationService, cfg, log)
	donationHandler := handlers.NewDonationHandler(donationService, campaignService, log)
	wsHub := handlers.NewWSHub(subscriber, log)
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, campaignHandler, donationHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server",
		zap.String("addr", addr),
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("contract", cfg.ContractAddress),
		zap.Bool("write_enabled", cfg.CanWrite()),
	)
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
