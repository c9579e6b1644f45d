package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chainraise/backend/internal/config"
	"github.com/chainraise/backend/internal/http/dto"
	"github.com/chainraise/backend/internal/middleware"
	"github.com/chainraise/backend/internal/models"
	"github.com/chainraise/backend/internal/services"
)

type CampaignHandler struct {
	campaigns *services.CampaignService
	creation  *services.CreationService
	cfg       *config.Config
	log       *zap.Logger
}

func NewCampaignHandler(
	campaigns *services.CampaignService,
	creation *services.CreationService,
	cfg *config.Config,
	log *zap.Logger,
) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, creation: creation, cfg: cfg, log: log}
}

// ListCampaigns serves the current snapshot, optionally filtered by
// ?search=, each campaign paired with metrics at request time. An empty
// chain is an empty list, never an error.
func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	now := time.Now().Unix()
	filtered := h.campaigns.List(c.Query("search"))

	out := make([]dto.CampaignResponse, 0, len(filtered))
	for _, campaign := range filtered {
		m := models.CampaignMetrics(campaign, now)
		out = append(out, dto.NewCampaignResponse(campaign, m, h.cfg.BaseUnitScale))
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.CampaignListResponse{
		Campaigns: out,
		Total:     h.campaigns.Count(),
		SyncedAt:  h.campaigns.SyncedAt().Unix(),
	}})
}

func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	campaign, ok := h.campaigns.Get(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "campaign not found"})
	}

	m := models.CampaignMetrics(campaign, time.Now().Unix())
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.NewCampaignResponse(campaign, m, h.cfg.BaseUnitScale)})
}

// Reload forces a full re-fetch of the snapshot.
func (h *CampaignHandler) Reload(c *fiber.Ctx) error {
	if err := h.campaigns.Reload(c.Context()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{"count": h.campaigns.Count()}})
}

// CreateCampaign submits a new-campaign write for the authenticated
// signer. Draft fields are cleared server-side by construction: the
// draft lives only in this request.
func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	var req dto.CreateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	draft := models.DraftCampaign{
		Title:       req.Title,
		Description: req.Description,
		Target:      req.Target,
		Deadline:    req.Deadline,
		Image:       req.Image,
	}

	txHash, err := h.creation.Create(c.Context(), middleware.GetSigner(c), draft)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: dto.TxResponse{TransactionHash: txHash}})
}

// GetSelection resolves the signer's stored selection against the
// current snapshot; a stale id reads as no selection.
func (h *CampaignHandler) GetSelection(c *fiber.Ctx) error {
	campaign, ok := h.campaigns.Selection(middleware.GetSigner(c))
	if !ok {
		return c.JSON(dto.SuccessResponse{OK: true, Data: dto.SelectionResponse{Selected: false}})
	}

	m := models.CampaignMetrics(campaign, time.Now().Unix())
	resp := dto.NewCampaignResponse(campaign, m, h.cfg.BaseUnitScale)
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.SelectionResponse{Selected: true, Campaign: &resp}})
}

func (h *CampaignHandler) SelectCampaign(c *fiber.Ctx) error {
	var req dto.SelectCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	h.campaigns.Select(middleware.GetSigner(c), req.CampaignID)
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *CampaignHandler) ClearSelection(c *fiber.Ctx) error {
	h.campaigns.ClearSelection(middleware.GetSigner(c))
	return c.JSON(dto.SuccessResponse{OK: true})
}
