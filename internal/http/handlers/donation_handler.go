package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chainraise/backend/internal/http/dto"
	"github.com/chainraise/backend/internal/middleware"
	"github.com/chainraise/backend/internal/services"
)

type DonationHandler struct {
	donations *services.DonationService
	campaigns *services.CampaignService
	log       *zap.Logger
}

func NewDonationHandler(donations *services.DonationService, campaigns *services.CampaignService, log *zap.Logger) *DonationHandler {
	return &DonationHandler{donations: donations, campaigns: campaigns, log: log}
}

// Donate submits a donation to the campaign in the path. The id in the
// path wins over any stored selection so the request is unambiguous.
func (h *DonationHandler) Donate(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	var req dto.DonateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	txHash, err := h.donations.Donate(c.Context(), middleware.GetSigner(c), id, req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.TxResponse{TransactionHash: txHash}})
}

// DonateToSelection donates to the signer's stored selection, the
// donation-pane flow. A stale or absent selection is a 400, not a
// submission.
func (h *DonationHandler) DonateToSelection(c *fiber.Ctx) error {
	signer := middleware.GetSigner(c)

	campaign, ok := h.campaigns.Selection(signer)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "no campaign selected"})
	}

	var req dto.DonateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	txHash, err := h.donations.Donate(c.Context(), signer, campaign.PositionalID, req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.TxResponse{TransactionHash: txHash}})
}
