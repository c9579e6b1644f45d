package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chainraise/backend/internal/apperrors"
	"github.com/chainraise/backend/internal/config"
	"github.com/chainraise/backend/internal/events"
	"github.com/chainraise/backend/internal/models"
	"github.com/chainraise/backend/internal/repositories"
	"github.com/chainraise/backend/internal/units"
)

// CreationService orchestrates the new-campaign write: convert the
// draft's display-unit target and local deadline, submit, audit, reload.
type CreationService struct {
	ledger    Ledger
	campaigns *CampaignService
	audit     AuditRecorder
	pub       events.Publisher
	cfg       *config.Config
	log       *zap.Logger
	inflight  *inflightGuard

	// now is swappable for tests; time.Now otherwise.
	now func() time.Time
}

func NewCreationService(
	l Ledger,
	campaigns *CampaignService,
	audit AuditRecorder,
	pub events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *CreationService {
	return &CreationService{
		ledger:    l,
		campaigns: campaigns,
		audit:     audit,
		pub:       pub,
		cfg:       cfg,
		log:       log,
		inflight:  newInflightGuard(),
		now:       time.Now,
	}
}

// Create validates and submits a create-campaign write for the signer,
// who becomes the owner. The deadline must parse and lie in the future;
// the image URL is accepted as-is, reachability is deliberately not
// checked. Returns the transaction hash on success.
func (s *CreationService) Create(ctx context.Context, signer string, draft models.DraftCampaign) (string, error) {
	if signer == "" {
		return "", &apperrors.ValidationError{Field: "signer", Reason: "wallet not connected"}
	}
	if !s.cfg.CanWrite() {
		return "", &apperrors.ValidationError{Field: "gateway", Reason: "process has no write credential"}
	}
	if draft.Title == "" {
		return "", &apperrors.ValidationError{Field: "title", Reason: "required"}
	}

	target, err := units.ToBaseUnits(draft.Target, s.cfg.BaseUnitScale)
	if err != nil {
		return "", &apperrors.ValidationError{Field: "target", Reason: "not a decimal number"}
	}
	if target.Sign() <= 0 {
		return "", &apperrors.ValidationError{Field: "target", Reason: "must be greater than zero"}
	}

	deadline, err := units.ToUnixSeconds(draft.Deadline)
	if err != nil {
		return "", err
	}
	if deadline <= s.now().Unix() {
		return "", &apperrors.ValidationError{Field: "deadline", Reason: "must be in the future"}
	}

	if !s.inflight.tryAcquire(signer, surfaceCreate) {
		return "", apperrors.ErrInFlight
	}
	defer s.inflight.release(signer, surfaceCreate)

	subCtx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	targetStr := target.String()
	txHash, err := s.ledger.CreateCampaign(subCtx, signer, draft.Title, draft.Description, target, deadline, draft.Image)
	if err != nil {
		s.log.Error("campaign creation failed",
			zap.String("signer", signer),
			zap.String("title", draft.Title),
			zap.Error(err),
		)
		errStr := err.Error()
		_ = s.audit.Record(ctx, repositories.TxAudit{
			Signer:          signer,
			Operation:       "create_campaign",
			AmountBaseUnits: &targetStr,
			Status:          "failed",
			Error:           &errStr,
		})
		return "", err
	}

	s.log.Info("campaign created",
		zap.String("signer", signer),
		zap.String("title", draft.Title),
		zap.String("tx_hash", txHash),
	)

	_ = s.audit.Record(ctx, repositories.TxAudit{
		Signer:          signer,
		Operation:       "create_campaign",
		AmountBaseUnits: &targetStr,
		TxHash:          &txHash,
		Status:          "submitted",
	})

	_ = s.pub.Publish(ctx, events.StreamCampaigns, events.Event{
		Type:    events.EventCampaignCreated,
		Payload: map[string]any{"title": draft.Title, "tx_hash": txHash},
	})

	if err := s.campaigns.Reload(ctx); err != nil {
		s.log.Warn("post-creation reload failed, snapshot is stale", zap.Error(err))
	}

	return txHash, nil
}
