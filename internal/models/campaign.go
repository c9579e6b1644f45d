package models

import (
	"math/big"
	"strings"
)

// Campaign is a read-only snapshot of one on-chain fundraising record.
//
// PositionalID is the index of the record in the contract's current
// return array, not a ledger-assigned id. The contract exposes no stable
// id, so any reordering or removal on chain invalidates previously held
// ids; holders must re-resolve after every reload.
type Campaign struct {
	PositionalID    int
	Owner           string
	Title           string
	Description     string
	Target          *big.Int // base units
	Deadline        int64    // unix seconds
	AmountCollected *big.Int // base units
	Image           string
	Donators        []string
	Donations       []*big.Int // parallel to Donators
}

// Metrics are derived per render from a campaign and an explicit clock.
type Metrics struct {
	ProgressPercent int64 `json:"progress_percent"`
	DaysLeft        int64 `json:"days_left"`
	IsActive        bool  `json:"is_active"`
}

const secondsPerDay = 86400

var hundred = big.NewInt(100)

// CampaignMetrics computes funding progress and time remaining at the
// given instant. Pure: same inputs, same output, no clock capture.
//
// Progress is computed on the base-unit integers directly
// (collected*100/target, clamped to [0,100]) so no precision is lost to
// a float ratio. A zero or missing target reads as 0% funded.
func CampaignMetrics(c Campaign, now int64) Metrics {
	m := Metrics{IsActive: c.Deadline > now}

	if c.Target != nil && c.Target.Sign() > 0 && c.AmountCollected != nil {
		p := new(big.Int).Mul(c.AmountCollected, hundred)
		p.Quo(p, c.Target)
		if p.Sign() < 0 {
			m.ProgressPercent = 0
		} else if p.Cmp(hundred) > 0 {
			m.ProgressPercent = 100
		} else {
			m.ProgressPercent = p.Int64()
		}
	}

	if diff := c.Deadline - now; diff > 0 {
		m.DaysLeft = (diff + secondsPerDay - 1) / secondsPerDay
	}

	return m
}

// FilterCampaigns returns the campaigns whose title or description
// contains term, case-insensitively. An empty term returns the input
// unchanged. Order is preserved; the input slice is never mutated.
func FilterCampaigns(campaigns []Campaign, term string) []Campaign {
	if term == "" {
		return campaigns
	}
	needle := strings.ToLower(term)

	var out []Campaign
	for _, c := range campaigns {
		if strings.Contains(strings.ToLower(c.Title), needle) ||
			strings.Contains(strings.ToLower(c.Description), needle) {
			out = append(out, c)
		}
	}
	return out
}

// DraftCampaign is transient user input for a create-campaign write.
// Target is a decimal string in display units; Deadline is a local
// date-time string. Both are converted at submission time.
type DraftCampaign struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Target      string `json:"target"`
	Deadline    string `json:"deadline"`
	Image       string `json:"image"`
}
