package dto

type AuthWalletRequest struct {
	Address string `json:"address"`
}

type CreateCampaignRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// Target is a decimal string in display units ("1.5"), converted to
	// base units at submission.
	Target string `json:"target"`
	// Deadline is a local date-time string as submitted by a
	// datetime-local input.
	Deadline string `json:"deadline"`
	Image    string `json:"image"`
}

type DonateRequest struct {
	// Amount is a decimal string in display units.
	Amount string `json:"amount"`
}

type SelectCampaignRequest struct {
	CampaignID int `json:"campaign_id"`
}
