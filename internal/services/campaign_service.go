package services

import (
	"context"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chainraise/backend/internal/events"
	"github.com/chainraise/backend/internal/ledger"
	"github.com/chainraise/backend/internal/models"
	"github.com/chainraise/backend/internal/repositories"
)

// Ledger is the contract boundary the services depend on; the gateway
// satisfies it in production, fakes do in tests.
type Ledger interface {
	GetCampaigns(ctx context.Context) ([]ledger.RawCampaign, error)
	CreateCampaign(ctx context.Context, owner, title, description string, target *big.Int, deadline int64, image string) (string, error)
	DonateToCampaign(ctx context.Context, campaignID int, value *big.Int) (string, error)
}

// AuditRecorder persists the write-submission trail. Satisfied by
// repositories.AuditRepo.
type AuditRecorder interface {
	Record(ctx context.Context, a repositories.TxAudit) error
}

// CampaignService owns the in-memory campaign snapshot: the normalized
// result of the last successful chain read. The snapshot is replaced
// wholesale on every reload and never patched in place, so readers see
// either the old collection or the new one, nothing in between.
type CampaignService struct {
	ledger Ledger
	pub    events.Publisher
	log    *zap.Logger

	mu        sync.RWMutex
	campaigns []models.Campaign
	syncedAt  time.Time

	selMu      sync.Mutex
	selections map[string]int // signer -> positional id
}

func NewCampaignService(l Ledger, pub events.Publisher, log *zap.Logger) *CampaignService {
	return &CampaignService{
		ledger:     l,
		pub:        pub,
		log:        log,
		selections: make(map[string]int),
	}
}

// Reload re-fetches and re-normalizes the whole collection. Malformed
// records are dropped inside Normalize; a failed read keeps the previous
// snapshot so the list degrades to stale rather than empty.
func (s *CampaignService) Reload(ctx context.Context) error {
	records, err := s.ledger.GetCampaigns(ctx)
	if err != nil {
		return err
	}

	campaigns := ledger.Normalize(records, s.log)

	s.mu.Lock()
	s.campaigns = campaigns
	s.syncedAt = time.Now()
	s.mu.Unlock()

	s.log.Info("campaign snapshot reloaded",
		zap.Int("records", len(records)),
		zap.Int("campaigns", len(campaigns)),
	)

	_ = s.pub.Publish(ctx, events.StreamCampaigns, events.Event{
		Type:    events.EventCampaignsReloaded,
		Payload: map[string]any{"count": len(campaigns)},
	})

	return nil
}

// StartRefresh reloads the snapshot on a timer until ctx is cancelled.
// Individual failures are logged and retried next tick.
func (s *CampaignService) StartRefresh(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Reload(ctx); err != nil {
					s.log.Warn("background refresh failed", zap.Error(err))
				}
			}
		}
	}()
}

// List returns the snapshot filtered by the search term, in contract
// order. The empty term returns everything.
func (s *CampaignService) List(term string) []models.Campaign {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.FilterCampaigns(s.campaigns, term)
}

// Get resolves a positional id against the current snapshot. Dropped
// malformed records leave holes in the id sequence, so this scans by
// PositionalID rather than indexing the slice.
func (s *CampaignService) Get(id int) (models.Campaign, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.campaigns {
		if c.PositionalID == id {
			return c, true
		}
	}
	return models.Campaign{}, false
}

// Count returns the size of the current snapshot.
func (s *CampaignService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.campaigns)
}

// SyncedAt reports when the snapshot was last replaced.
func (s *CampaignService) SyncedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncedAt
}

// Select remembers the signer's chosen campaign for the donation pane.
// The id is stored as-is: it is validated against the snapshot on read,
// not on write, because a reload can invalidate it at any time.
func (s *CampaignService) Select(signer string, id int) {
	s.selMu.Lock()
	s.selections[signer] = id
	s.selMu.Unlock()
}

// ClearSelection drops the signer's selection if any.
func (s *CampaignService) ClearSelection(signer string) {
	s.selMu.Lock()
	delete(s.selections, signer)
	s.selMu.Unlock()
}

// Selection resolves the signer's selection against the current
// snapshot. A stale id — one the latest reload no longer covers — reads
// as no selection.
func (s *CampaignService) Selection(signer string) (models.Campaign, bool) {
	s.selMu.Lock()
	id, ok := s.selections[signer]
	s.selMu.Unlock()
	if !ok {
		return models.Campaign{}, false
	}
	return s.Get(id)
}
