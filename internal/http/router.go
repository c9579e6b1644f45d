package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chainraise/backend/internal/config"
	"github.com/chainraise/backend/internal/http/handlers"
	"github.com/chainraise/backend/internal/middleware"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	campaignHandler *handlers.CampaignHandler,
	donationHandler *handlers.DonationHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/wallet", authHandler.WalletAuth)

	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Campaign snapshot (public reads)
	api.Get("/campaigns", campaignHandler.ListCampaigns)
	api.Get("/campaigns/:id", campaignHandler.GetCampaign)

	// Writes and per-signer state
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	protected.Post("/campaigns", campaignHandler.CreateCampaign)
	protected.Post("/campaigns/reload", campaignHandler.Reload)
	protected.Post("/campaigns/:id/donate", donationHandler.Donate)

	protected.Get("/me/selection", campaignHandler.GetSelection)
	protected.Put("/me/selection", campaignHandler.SelectCampaign)
	protected.Delete("/me/selection", campaignHandler.ClearSelection)
	protected.Post("/me/selection/donate", donationHandler.DonateToSelection)

	// WebSocket (reload push)
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
