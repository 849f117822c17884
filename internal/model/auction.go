package model

import "time"

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus string

const (
	AuctionActive    AuctionStatus = "ACTIVE"
	AuctionCompleted AuctionStatus = "COMPLETED"
	AuctionCancelled AuctionStatus = "CANCELLED"
)

// AuctionType selects the stand-time and roster-compliance windows.
type AuctionType string

const (
	InSeason  AuctionType = "IN_SEASON"
	OffSeason AuctionType = "OFF_SEASON"
)

// Auction represents a running free-agency auction.  At most one
// ACTIVE auction is treated as the main auction at any time.  This
// struct corresponds to a row in the `auctions` table.
//
// Fields:
//
//	ID              – primary key identifier.
//	Name            – display name of the auction.
//	StartTime       – when the auction window opens.
//	EndTime         – when the auction window closes.
//	CommissionerID  – user ID of the commissioner who created it.
//	Status          – ACTIVE, COMPLETED or CANCELLED.
//	Type            – IN_SEASON or OFF_SEASON.
//	Description     – free text shown on the board.
type Auction struct {
	ID             uint64        // auctions.id
	Name           string        // auctions.name
	StartTime      time.Time     // auctions.start_time
	EndTime        time.Time     // auctions.end_time
	CommissionerID uint64        // auctions.created_by_commissioner_id
	Status         AuctionStatus // auctions.status
	Type           AuctionType   // auctions.auction_type
	Description    string        // auctions.description
}
