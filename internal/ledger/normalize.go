package ledger

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chainraise/backend/internal/apperrors"
	"github.com/chainraise/backend/internal/models"
)

// Normalize maps raw gateway records into canonical campaigns, assigning
// positional ids from array order.
//
// Policy for bad records: drop and log, keep the rest of the batch. A
// record is bad when a required field is missing, a numeric field is not
// an exact integer, or donators and donations disagree in length — the
// last one indicates a corrupt or partially indexed read and is never
// papered over by truncating either side.
func Normalize(records []RawCampaign, log *zap.Logger) []models.Campaign {
	campaigns := make([]models.Campaign, 0, len(records))

	for i, rec := range records {
		c, err := normalizeOne(i, rec)
		if err != nil {
			log.Warn("dropping malformed campaign record", zap.Error(err))
			continue
		}
		campaigns = append(campaigns, c)
	}
	return campaigns
}

func normalizeOne(index int, rec RawCampaign) (models.Campaign, error) {
	fail := func(reason string) (models.Campaign, error) {
		return models.Campaign{}, &apperrors.MalformedRecordError{Index: index, Reason: reason}
	}

	if rec.Owner == "" {
		return fail("missing owner")
	}
	if len(rec.Donators) != len(rec.Donations) {
		return fail(fmt.Sprintf("donators/donations length mismatch: %d vs %d",
			len(rec.Donators), len(rec.Donations)))
	}

	target, err := parseUint256(rec.Target)
	if err != nil {
		return fail(fmt.Sprintf("target: %v", err))
	}
	deadline, err := parseUint256(rec.Deadline)
	if err != nil {
		return fail(fmt.Sprintf("deadline: %v", err))
	}
	if !deadline.IsInt64() {
		return fail("deadline out of range")
	}
	collected, err := parseUint256(rec.AmountCollected)
	if err != nil {
		return fail(fmt.Sprintf("amountCollected: %v", err))
	}

	c := models.Campaign{
		PositionalID:    index,
		Owner:           rec.Owner,
		Title:           rec.Title,
		Description:     rec.Description,
		Target:          target,
		Deadline:        deadline.Int64(),
		AmountCollected: collected,
		Image:           rec.Image,
		Donators:        rec.Donators,
	}

	for j, d := range rec.Donations {
		n, err := parseUint256(d)
		if err != nil {
			return fail(fmt.Sprintf("donations[%d]: %v", j, err))
		}
		c.Donations = append(c.Donations, n)
	}

	return c, nil
}
