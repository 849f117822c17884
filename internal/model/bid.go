package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidStatus tracks whether a bid currently stands.
type BidStatus string

const (
	BidActive  BidStatus = "ACTIVE"
	BidOutbid  BidStatus = "OUTBID"
	BidWinning BidStatus = "WINNING"
)

// Bid is an append-only record of one accepted bid.  Only Status changes
// after insertion.
type Bid struct {
	ID            uint64          // bids.id
	AuctionItemID uint64          // bids.auction_item_id
	BidderID      uint64          // bids.bidder_id
	Amount        decimal.Decimal // bids.amount
	BidTime       time.Time       // bids.bid_time
	Status        BidStatus       // bids.status
}
