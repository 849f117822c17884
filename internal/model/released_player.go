package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReleaseStatus is the state of a release queue entry.
type ReleaseStatus string

const (
	ReleasePending        ReleaseStatus = "PENDING"
	ReleaseAddedToAuction ReleaseStatus = "ADDED_TO_AUCTION"
	ReleaseRejected       ReleaseStatus = "REJECTED"
)

// ReleasedPlayer is an entry in the commissioner's release queue.  The
// player is already a free agent; the entry records who let them go and
// on what contract until the commissioner nominates or rejects them.
type ReleasedPlayer struct {
	ID                     uint64          // released_players_queue.id
	PlayerID               uint64          // released_players_queue.player_id
	PlayerName             string          // released_players_queue.player_name
	Position               string          // released_players_queue.position
	Team                   string          // released_players_queue.team
	PreviousContractLength int             // released_players_queue.previous_contract_length
	PreviousContractAmount decimal.Decimal // released_players_queue.previous_contract_amount
	PreviousOwnerID        *uint64         // released_players_queue.previous_owner_id (nullable)
	ReleasedAt             time.Time       // released_players_queue.released_at
	Status                 ReleaseStatus   // released_players_queue.status
}
