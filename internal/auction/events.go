package auction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EventType names a committed state change.
type EventType string

const (
	EventBidPlaced       EventType = "bid.placed"
	EventPlayerAwarded   EventType = "player.awarded"
	EventContractPosted  EventType = "contract.posted"
	EventContractExpired EventType = "contract.expired"
	EventPlayerBoughtOut EventType = "player.bought_out"
	EventItemRemoved     EventType = "item.removed"
	EventPlayerNominated EventType = "player.nominated"
	EventPlayerReleased  EventType = "player.released"
	EventReleaseRejected EventType = "release.rejected"
)

// Event describes one committed mutation.  Zero ids mean "not relevant".
type Event struct {
	Type       EventType
	AuctionID  uint64
	ItemID     uint64
	PlayerID   uint64
	UserID     uint64
	ContractID uint64
	Amount     decimal.Decimal
	Message    string
	At         time.Time
}

// EventPublisher receives events after their transaction committed.
// Failures are logged and never undo the mutation.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
