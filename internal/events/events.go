package events

import "context"

// Event types pushed to connected UIs. A reload event replaces the
// original full page refresh: clients re-fetch the list when they see it.
const (
	EventCampaignsReloaded = "campaigns_reloaded"
	EventDonationConfirmed = "donation_confirmed"
	EventCampaignCreated   = "campaign_created"
)

// StreamCampaigns is the single pub/sub channel for campaign events.
const StreamCampaigns = "events:campaigns"

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// NopPublisher discards events; used when Redis is not configured and in
// tests.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
