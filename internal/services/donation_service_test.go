package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/chainraise/backend/internal/apperrors"
	"github.com/chainraise/backend/internal/events"
	"github.com/chainraise/backend/internal/ledger"
)

func newDonationService(f *fakeLedger) (*DonationService, *CampaignService, *fakeAudit) {
	campaigns := newCampaignService(f)
	audit := &fakeAudit{}
	d := NewDonationService(f, campaigns, audit, events.NopPublisher{}, testConfig(), zap.NewNop())
	return d, campaigns, audit
}

func TestDonateHappyPath(t *testing.T) {
	f := &fakeLedger{records: []ledger.RawCampaign{rawCampaign("a")}}
	d, campaigns, audit := newDonationService(f)
	if err := campaigns.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	campaigns.Select("0xsigner", 0)
	readsBefore := f.readCalls

	hash, err := d.Donate(context.Background(), "0xsigner", 0, "0.5")
	if err != nil {
		t.Fatal(err)
	}
	if hash != "0xdonate" {
		t.Errorf("hash = %s", hash)
	}
	if f.lastValue.String() != "500000000000000000" {
		t.Errorf("attached value = %s, want 5*10^17", f.lastValue)
	}

	// Success triggers a full re-fetch, not a patch.
	if f.readCalls != readsBefore+1 {
		t.Errorf("readCalls = %d, want %d", f.readCalls, readsBefore+1)
	}
	// Pending selection is cleared.
	if _, ok := campaigns.Selection("0xsigner"); ok {
		t.Error("selection survived a successful donation")
	}

	if len(audit.entries) != 1 || audit.entries[0].Status != "submitted" {
		t.Errorf("audit = %+v", audit.entries)
	}
}

func TestDonateRejectsBeforeSubmission(t *testing.T) {
	tests := []struct {
		name   string
		signer string
		id     int
		amount string
	}{
		{"missing signer", "", 0, "1"},
		{"zero amount", "0xsigner", 0, "0"},
		{"negative amount", "0xsigner", 0, "-5"},
		{"garbage amount", "0xsigner", 0, "a lot"},
		{"unknown campaign", "0xsigner", 99, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeLedger{records: []ledger.RawCampaign{rawCampaign("a")}}
			d, campaigns, _ := newDonationService(f)
			if err := campaigns.Reload(context.Background()); err != nil {
				t.Fatal(err)
			}

			_, err := d.Donate(context.Background(), tt.signer, tt.id, tt.amount)
			var validationErr *apperrors.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			// Rejected before any submission call.
			if f.donateCalls != 0 {
				t.Errorf("donateCalls = %d, want 0", f.donateCalls)
			}
		})
	}
}

func TestDonateWithoutWriteCredential(t *testing.T) {
	f := &fakeLedger{records: []ledger.RawCampaign{rawCampaign("a")}}
	campaigns := newCampaignService(f)
	cfg := testConfig()
	cfg.SecretKey = ""
	cfg.ClientID = "public-only"
	d := NewDonationService(f, campaigns, &fakeAudit{}, events.NopPublisher{}, cfg, zap.NewNop())
	if err := campaigns.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, err := d.Donate(context.Background(), "0xsigner", 0, "1")
	var validationErr *apperrors.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if f.donateCalls != 0 {
		t.Error("read-only process still submitted")
	}
}

func TestDonateFailureResetsInFlight(t *testing.T) {
	f := &fakeLedger{records: []ledger.RawCampaign{rawCampaign("a")}}
	d, campaigns, audit := newDonationService(f)
	if err := campaigns.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	f.mu.Lock()
	f.writeErr = &apperrors.TransactionError{Op: "donateToCampaign", Err: fmt.Errorf("reverted")}
	f.mu.Unlock()

	_, err := d.Donate(context.Background(), "0xsigner", 0, "1")
	var txErr *apperrors.TransactionError
	if !errors.As(err, &txErr) {
		t.Fatalf("error = %v, want TransactionError", err)
	}
	if len(audit.entries) != 1 || audit.entries[0].Status != "failed" {
		t.Errorf("audit = %+v", audit.entries)
	}

	// The guard must have reset: a retry reaches the ledger again.
	f.mu.Lock()
	f.writeErr = nil
	f.mu.Unlock()

	if _, err := d.Donate(context.Background(), "0xsigner", 0, "1"); err != nil {
		t.Fatalf("retry after failure blocked: %v", err)
	}
	if f.donateCalls != 2 {
		t.Errorf("donateCalls = %d, want 2", f.donateCalls)
	}
}

func TestDonateReentrancyGuard(t *testing.T) {
	d, _, _ := newDonationService(&fakeLedger{})

	if !d.inflight.tryAcquire("0xsigner", surfaceDonate) {
		t.Fatal("first acquire failed")
	}

	// A second submission on the same surface is rejected...
	_, err := func() (string, error) {
		if !d.inflight.tryAcquire("0xsigner", surfaceDonate) {
			return "", apperrors.ErrInFlight
		}
		return "", nil
	}()
	if !errors.Is(err, apperrors.ErrInFlight) {
		t.Fatalf("error = %v, want ErrInFlight", err)
	}

	// ...but the creation surface and other signers are independent.
	if !d.inflight.tryAcquire("0xsigner", surfaceCreate) {
		t.Error("creation surface blocked by donation in flight")
	}
	if !d.inflight.tryAcquire("0xother", surfaceDonate) {
		t.Error("other signer blocked")
	}

	d.inflight.release("0xsigner", surfaceDonate)
	if !d.inflight.tryAcquire("0xsigner", surfaceDonate) {
		t.Error("release did not reset the guard")
	}
}
