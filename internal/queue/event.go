// Package queue carries committed auction events over RabbitMQ: a
// publisher used by the engine and a consumer that keeps an audit trail.
package queue

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/fantasy-auction/internal/auction"
)

// AuctionEvent is the JSON payload published for every committed auction
// mutation.  Zero ids are omitted.
type AuctionEvent struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	AuctionID  uint64          `json:"auction_id,omitempty"`
	ItemID     uint64          `json:"item_id,omitempty"`
	PlayerID   uint64          `json:"player_id,omitempty"`
	UserID     uint64          `json:"user_id,omitempty"`
	ContractID uint64          `json:"contract_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Message    string          `json:"message"`
	OccurredAt string          `json:"occurred_at"`
}

// NewAuctionEvent converts an engine event into its wire form with a fresh
// id.
func NewAuctionEvent(ev auction.Event) AuctionEvent {
	return AuctionEvent{
		ID:         uuid.NewString(),
		Type:       string(ev.Type),
		AuctionID:  ev.AuctionID,
		ItemID:     ev.ItemID,
		PlayerID:   ev.PlayerID,
		UserID:     ev.UserID,
		ContractID: ev.ContractID,
		Amount:     ev.Amount,
		Message:    ev.Message,
		OccurredAt: ev.At.UTC().Format(time.RFC3339),
	}
}
