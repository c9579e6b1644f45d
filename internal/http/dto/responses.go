package dto

import (
	"github.com/chainraise/backend/internal/models"
	"github.com/chainraise/backend/internal/units"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type AuthResponse struct {
	Token   string `json:"token"`
	Address string `json:"address"`
}

type TxResponse struct {
	TransactionHash string `json:"transaction_hash"`
}

// CampaignResponse renders one campaign with derived metrics. Monetary
// fields carry exact base units as strings plus a lossy display-unit
// rendering; clients must not compute on the display values.
type CampaignResponse struct {
	ID               int      `json:"id"`
	Owner            string   `json:"owner"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Target           string   `json:"target"`
	TargetDisplay    string   `json:"target_display"`
	Deadline         int64    `json:"deadline"`
	AmountCollected  string   `json:"amount_collected"`
	CollectedDisplay string   `json:"collected_display"`
	Image            string   `json:"image"`
	Donators         []string `json:"donators"`
	Donations        []string `json:"donations"`
	models.Metrics
}

func NewCampaignResponse(c models.Campaign, m models.Metrics, scale int32) CampaignResponse {
	donations := make([]string, len(c.Donations))
	for i, d := range c.Donations {
		donations[i] = d.String()
	}

	return CampaignResponse{
		ID:               c.PositionalID,
		Owner:            c.Owner,
		Title:            c.Title,
		Description:      c.Description,
		Target:           c.Target.String(),
		TargetDisplay:    units.FromBaseUnits(c.Target, scale),
		Deadline:         c.Deadline,
		AmountCollected:  c.AmountCollected.String(),
		CollectedDisplay: units.FromBaseUnits(c.AmountCollected, scale),
		Image:            c.Image,
		Donators:         c.Donators,
		Donations:        donations,
		Metrics:          m,
	}
}

type CampaignListResponse struct {
	Campaigns []CampaignResponse `json:"campaigns"`
	Total     int                `json:"total"`
	SyncedAt  int64              `json:"synced_at"`
}

type SelectionResponse struct {
	Selected bool              `json:"selected"`
	Campaign *CampaignResponse `json:"campaign,omitempty"`
}
