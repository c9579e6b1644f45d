package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chainraise/backend/internal/apperrors"
	"github.com/chainraise/backend/internal/config"
	"github.com/chainraise/backend/internal/events"
	"github.com/chainraise/backend/internal/ledger"
	"github.com/chainraise/backend/internal/repositories"
)

// fakeLedger implements Ledger in memory and counts calls so tests can
// assert that rejected writes never reached the network boundary.
type fakeLedger struct {
	mu          sync.Mutex
	records     []ledger.RawCampaign
	readErr     error
	writeErr    error
	readCalls    int
	donateCalls  int
	createCalls  int
	lastValue    *big.Int
	lastOwner    string
	lastTarget   *big.Int
	lastDeadline int64
}

func (f *fakeLedger) GetCampaigns(ctx context.Context) ([]ledger.RawCampaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCalls++
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.records, nil
}

func (f *fakeLedger) CreateCampaign(ctx context.Context, owner, title, description string, target *big.Int, deadline int64, image string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.lastOwner = owner
	f.lastTarget = target
	f.lastDeadline = deadline
	return "0xcreate", nil
}

func (f *fakeLedger) DonateToCampaign(ctx context.Context, campaignID int, value *big.Int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.donateCalls++
	if f.writeErr != nil {
		return "", f.writeErr
	}
	f.lastValue = value
	return "0xdonate", nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []repositories.TxAudit
}

func (f *fakeAudit) Record(ctx context.Context, a repositories.TxAudit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, a)
	return nil
}

func rawCampaign(title string) ledger.RawCampaign {
	return ledger.RawCampaign{
		Owner:           "0x1111111111111111111111111111111111111111",
		Title:           title,
		Description:     "description of " + title,
		Target:          json.RawMessage(`"1000000000000000000000"`),
		Deadline:        json.RawMessage(fmt.Sprintf("%d", time.Now().Add(72*time.Hour).Unix())),
		AmountCollected: json.RawMessage(`"250000000000000000000"`),
		Image:           "https://example.com/img.png",
		Donators:        []string{},
		Donations:       []json.RawMessage{},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:     "secret",
		BaseUnitScale: 18,
		WriteTimeout:  5 * time.Second,
	}
}

func newCampaignService(f *fakeLedger) *CampaignService {
	return NewCampaignService(f, events.NopPublisher{}, zap.NewNop())
}

func TestReloadReplacesSnapshotWholesale(t *testing.T) {
	f := &fakeLedger{records: []ledger.RawCampaign{rawCampaign("one"), rawCampaign("two")}}
	s := newCampaignService(f)

	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Count() != 2 {
		t.Fatalf("Count = %d, want 2", s.Count())
	}

	f.mu.Lock()
	f.records = []ledger.RawCampaign{rawCampaign("only")}
	f.mu.Unlock()

	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Count() != 1 {
		t.Fatalf("Count after shrink = %d, want 1", s.Count())
	}
	if got := s.List(""); got[0].Title != "only" {
		t.Errorf("snapshot not replaced: %q", got[0].Title)
	}
}

func TestReloadFailureKeepsOldSnapshot(t *testing.T) {
	f := &fakeLedger{records: []ledger.RawCampaign{rawCampaign("keep")}}
	s := newCampaignService(f)

	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	f.mu.Lock()
	f.readErr = &apperrors.ReadError{Err: fmt.Errorf("rpc down")}
	f.mu.Unlock()

	if err := s.Reload(context.Background()); err == nil {
		t.Fatal("expected read error")
	}
	if s.Count() != 1 {
		t.Errorf("failed reload must keep the previous snapshot, Count = %d", s.Count())
	}
}

func TestEmptyChainYieldsEmptyCollection(t *testing.T) {
	f := &fakeLedger{}
	s := newCampaignService(f)

	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("empty chain must not error: %v", err)
	}
	if got := s.List(""); len(got) != 0 {
		t.Errorf("List = %d campaigns, want 0", len(got))
	}
}

func TestListFiltersByTerm(t *testing.T) {
	f := &fakeLedger{records: []ledger.RawCampaign{
		rawCampaign("Clean Water"),
		rawCampaign("School Books"),
	}}
	s := newCampaignService(f)
	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := s.List("water")
	if len(got) != 1 || got[0].Title != "Clean Water" {
		t.Errorf("List(water) = %+v", got)
	}
	if all := s.List(""); len(all) != 2 {
		t.Errorf("List(\"\") = %d campaigns, want 2", len(all))
	}
}

func TestSelectionSurvivesOnlyWhileIDExists(t *testing.T) {
	f := &fakeLedger{records: []ledger.RawCampaign{rawCampaign("a"), rawCampaign("b")}}
	s := newCampaignService(f)
	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.Select("0xsigner", 1)
	if c, ok := s.Selection("0xsigner"); !ok || c.Title != "b" {
		t.Fatalf("Selection = %+v, %v", c, ok)
	}

	// A reload that shrinks the list makes the stored id stale.
	f.mu.Lock()
	f.records = f.records[:1]
	f.mu.Unlock()
	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Selection("0xsigner"); ok {
		t.Error("stale selection must read as no selection")
	}

	s.ClearSelection("0xsigner")
	if _, ok := s.Selection("0xsigner"); ok {
		t.Error("cleared selection still resolves")
	}
}

func TestSelectionIsPerSigner(t *testing.T) {
	f := &fakeLedger{records: []ledger.RawCampaign{rawCampaign("a"), rawCampaign("b")}}
	s := newCampaignService(f)
	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.Select("0xalice", 0)
	s.Select("0xbob", 1)

	if c, _ := s.Selection("0xalice"); c.Title != "a" {
		t.Errorf("alice selection = %q", c.Title)
	}
	if c, _ := s.Selection("0xbob"); c.Title != "b" {
		t.Errorf("bob selection = %q", c.Title)
	}
}
