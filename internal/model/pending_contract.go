package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractStatus is the state of an awarded-but-uncontracted player.
type ContractStatus string

const (
	ContractPending   ContractStatus = "PENDING"
	ContractPosted    ContractStatus = "POSTED"
	ContractExpired   ContractStatus = "EXPIRED"
	ContractBoughtOut ContractStatus = "BOUGHT_OUT"
)

// PendingContract is created when a lot is awarded.  The winner must post
// a contract before ContractDeadline or pay BuyoutFee, which is fixed at
// creation.
//
// Fields:
//
//	ID               – primary key identifier.
//	AuctionItemID    – awarded lot.
//	PlayerID         – awarded player.
//	WinnerID         – user holding the winning bid.
//	WinningBid       – annual salary the winner committed to.
//	WonTime          – award time.
//	ContractDeadline – WonTime + 48h.
//	ContractYears    – posted length (nil until posted).
//	Status           – PENDING, POSTED, EXPIRED or BOUGHT_OUT.
//	BuyoutFee        – half of WinningBid.
//	IsMinorLeaguer   – classification copied from the lot.
type PendingContract struct {
	ID               uint64          // pending_contracts.id
	AuctionItemID    uint64          // pending_contracts.auction_item_id
	PlayerID         uint64          // pending_contracts.player_id
	WinnerID         uint64          // pending_contracts.winner_id
	WinningBid       decimal.Decimal // pending_contracts.winning_bid
	WonTime          time.Time       // pending_contracts.won_time
	ContractDeadline time.Time       // pending_contracts.contract_deadline
	ContractYears    *int            // pending_contracts.contract_years (nullable)
	Status           ContractStatus  // pending_contracts.status
	BuyoutFee        decimal.Decimal // pending_contracts.buyout_fee
	IsMinorLeaguer   bool            // pending_contracts.is_minor_leaguer
}

// DeadlinePassed reports whether now is strictly after the posting deadline.
func (c *PendingContract) DeadlinePassed(now time.Time) bool {
	return now.After(c.ContractDeadline)
}
