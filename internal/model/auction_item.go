package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus is the lifecycle state of a single lot.
type ItemStatus string

const (
	ItemActive           ItemStatus = "ACTIVE"
	ItemAwaitingContract ItemStatus = "AWAITING_CONTRACT"
	ItemSold             ItemStatus = "SOLD"
	ItemRemoved          ItemStatus = "REMOVED"
	ItemBoughtOut        ItemStatus = "BOUGHT_OUT"
	ItemContractExpired  ItemStatus = "CONTRACT_EXPIRED"
)

// Terminal reports whether no further transition is possible for the lot.
func (s ItemStatus) Terminal() bool {
	switch s {
	case ItemSold, ItemRemoved, ItemBoughtOut, ItemContractExpired:
		return true
	}
	return false
}

// AuctionItem is one player nominated for bidding (a lot).  CurrentBid,
// CurrentBidderID and FirstBidTime are either all nil (no bids yet) or
// all set.  This struct corresponds to a row in the `auction_items` table.
//
// Fields:
//
//	ID                       – primary key identifier.
//	PlayerID                 – nominated player.
//	AuctionID                – owning auction.
//	StartingBid              – classification floor or the nominator's higher value.
//	CurrentBid               – highest accepted bid (nil before the first bid).
//	CurrentBidderID          – user holding the highest bid (nil before the first bid).
//	NominatedByUserID        – commissioner who nominated the player.
//	AddedTime                – nomination time.
//	FirstBidTime             – first accepted bid, immutable once set.
//	LastBidTime              – most recent accepted bid.
//	EndTime                  – LastBidTime plus the stand time.
//	Status                   – see ItemStatus.
//	ContractDeadline         – set on award.
//	RosterComplianceDeadline – set on award.
//	CanDeleteBid             – false once any bid has landed.
//	CurrentMinimumIncrement  – increment required on top of CurrentBid.
//	IsMinorLeaguer           – minor leaguer or rookie classification.
//	Version                  – optimistic locking counter.
type AuctionItem struct {
	ID                       uint64           // auction_items.id
	PlayerID                 uint64           // auction_items.player_id
	AuctionID                uint64           // auction_items.auction_id
	StartingBid              decimal.Decimal  // auction_items.starting_bid
	CurrentBid               *decimal.Decimal // auction_items.current_bid (nullable)
	CurrentBidderID          *uint64          // auction_items.current_bidder_id (nullable)
	NominatedByUserID        uint64           // auction_items.nominated_by_user_id
	AddedTime                time.Time        // auction_items.added_time
	FirstBidTime             *time.Time       // auction_items.first_bid_time (nullable)
	LastBidTime              *time.Time       // auction_items.last_bid_time (nullable)
	EndTime                  *time.Time       // auction_items.end_time (nullable)
	Status                   ItemStatus       // auction_items.status
	ContractDeadline         *time.Time       // auction_items.contract_deadline (nullable)
	RosterComplianceDeadline *time.Time       // auction_items.roster_compliance_deadline (nullable)
	CanDeleteBid             bool             // auction_items.can_delete_bid
	CurrentMinimumIncrement  decimal.Decimal  // auction_items.current_minimum_increment
	IsMinorLeaguer           bool             // auction_items.is_minor_leaguer
	Version                  uint32           // auction_items.version
}

// HasBids reports whether at least one bid has been accepted on the lot.
func (i *AuctionItem) HasBids() bool {
	return i.CurrentBidderID != nil
}
