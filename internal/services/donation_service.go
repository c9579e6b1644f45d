package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/chainraise/backend/internal/apperrors"
	"github.com/chainraise/backend/internal/config"
	"github.com/chainraise/backend/internal/events"
	"github.com/chainraise/backend/internal/repositories"
	"github.com/chainraise/backend/internal/units"
)

// DonationService orchestrates a value transfer against a selected
// campaign: validate, convert to base units, submit, audit, reload.
type DonationService struct {
	ledger    Ledger
	campaigns *CampaignService
	audit     AuditRecorder
	pub       events.Publisher
	cfg       *config.Config
	log       *zap.Logger
	inflight  *inflightGuard
}

func NewDonationService(
	l Ledger,
	campaigns *CampaignService,
	audit AuditRecorder,
	pub events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *DonationService {
	return &DonationService{
		ledger:    l,
		campaigns: campaigns,
		audit:     audit,
		pub:       pub,
		cfg:       cfg,
		log:       log,
		inflight:  newInflightGuard(),
	}
}

// Donate validates and submits a donation from signer to the campaign at
// campaignID. All validation happens before any network call; a
// rejected donation provably never reached the gateway.
//
// On success the whole snapshot is re-fetched — no incremental patch —
// and the signer's selection is cleared. On failure the typed error is
// returned to the caller and the in-flight flag resets so the action can
// be retried; nothing local was mutated before confirmation.
func (s *DonationService) Donate(ctx context.Context, signer string, campaignID int, amount string) (string, error) {
	if signer == "" {
		return "", &apperrors.ValidationError{Field: "signer", Reason: "wallet not connected"}
	}
	if !s.cfg.CanWrite() {
		return "", &apperrors.ValidationError{Field: "gateway", Reason: "process has no write credential"}
	}

	value, err := units.ToBaseUnits(amount, s.cfg.BaseUnitScale)
	if err != nil {
		return "", err
	}
	if value.Sign() <= 0 {
		return "", &apperrors.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	campaign, ok := s.campaigns.Get(campaignID)
	if !ok {
		return "", &apperrors.ValidationError{Field: "campaign", Reason: "no such campaign in the current snapshot"}
	}

	if !s.inflight.tryAcquire(signer, surfaceDonate) {
		return "", apperrors.ErrInFlight
	}
	defer s.inflight.release(signer, surfaceDonate)

	subCtx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	amountStr := value.String()
	txHash, err := s.ledger.DonateToCampaign(subCtx, campaign.PositionalID, value)
	if err != nil {
		s.log.Error("donation failed",
			zap.String("signer", signer),
			zap.Int("campaign_id", campaign.PositionalID),
			zap.Error(err),
		)
		errStr := err.Error()
		_ = s.audit.Record(ctx, repositories.TxAudit{
			Signer:          signer,
			Operation:       "donate",
			CampaignID:      &campaign.PositionalID,
			AmountBaseUnits: &amountStr,
			Status:          "failed",
			Error:           &errStr,
		})
		return "", err
	}

	s.log.Info("donation submitted",
		zap.String("signer", signer),
		zap.Int("campaign_id", campaign.PositionalID),
		zap.String("amount_base_units", amountStr),
		zap.String("tx_hash", txHash),
	)

	_ = s.audit.Record(ctx, repositories.TxAudit{
		Signer:          signer,
		Operation:       "donate",
		CampaignID:      &campaign.PositionalID,
		AmountBaseUnits: &amountStr,
		TxHash:          &txHash,
		Status:          "submitted",
	})

	_ = s.pub.Publish(ctx, events.StreamCampaigns, events.Event{
		Type: events.EventDonationConfirmed,
		Payload: map[string]any{
			"campaign_id": campaign.PositionalID,
			"tx_hash":     txHash,
		},
	})

	// Positional ids may shift after the reload, so the stored
	// selection is meaningless now either way.
	s.campaigns.ClearSelection(signer)

	if err := s.campaigns.Reload(ctx); err != nil {
		s.log.Warn("post-donation reload failed, snapshot is stale", zap.Error(err))
	}

	return txHash, nil
}
