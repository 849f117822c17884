package repository

import (
	"context"
	"time"

	"github.com/iliyamo/fantasy-auction/internal/model"
)

// Store runs units of work atomically.  fn receives a Tx scoped to a
// single transaction; if fn returns an error nothing it wrote is kept.
// Entities returned by a Tx are copies and must not outlive fn.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx groups the per-entity repositories visible inside one transaction.
type Tx interface {
	AuctionRepo
	ItemRepo
	BidRepo
	ContractRepo
	AccountRepo
	PlayerRepo
	ReleaseRepo
}

// AuctionRepo persists auctions.
type AuctionRepo interface {
	GetAuction(ctx context.Context, id uint64) (*model.Auction, error)
	ListAuctionsByStatus(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error)
	CreateAuction(ctx context.Context, a *model.Auction) error
	UpdateAuction(ctx context.Context, a *model.Auction) error
}

// ItemRepo persists lots.  UpdateItem succeeds only when the stored
// version equals item.Version and bumps it; otherwise ErrConflict.
type ItemRepo interface {
	GetItem(ctx context.Context, id uint64) (*model.AuctionItem, error)
	ListItems(ctx context.Context, auctionID uint64, status model.ItemStatus) ([]model.AuctionItem, error)
	FindItemByPlayer(ctx context.Context, playerID uint64, status model.ItemStatus) (*model.AuctionItem, error)
	CreateItem(ctx context.Context, item *model.AuctionItem) error
	UpdateItem(ctx context.Context, item *model.AuctionItem) error
}

// BidRepo is the append-only bid ledger.  Amount ordering breaks ties by
// insertion order so the first bid at a given amount stands.
type BidRepo interface {
	CreateBid(ctx context.Context, b *model.Bid) error
	UpdateBidStatus(ctx context.Context, id uint64, status model.BidStatus) error
	ListBidsByAmountDesc(ctx context.Context, itemID uint64) ([]model.Bid, error)
	HighestBid(ctx context.Context, itemID uint64) (*model.Bid, error)
	ListBidsByBidder(ctx context.Context, bidderID uint64) ([]model.Bid, error)
}

// ContractRepo persists pending contracts.
type ContractRepo interface {
	GetContract(ctx context.Context, id uint64) (*model.PendingContract, error)
	CreateContract(ctx context.Context, c *model.PendingContract) error
	UpdateContract(ctx context.Context, c *model.PendingContract) error
	ListExpiredContracts(ctx context.Context, now time.Time) ([]model.PendingContract, error)
	ListContractsByWinner(ctx context.Context, winnerID uint64, status model.ContractStatus) ([]model.PendingContract, error)
}

// AccountRepo persists the cap and roster counters of team owners.
type AccountRepo interface {
	GetAccount(ctx context.Context, id uint64) (*model.UserAccount, error)
	UpdateAccount(ctx context.Context, u *model.UserAccount) error
}

// PlayerRepo persists players.
type PlayerRepo interface {
	GetPlayer(ctx context.Context, id uint64) (*model.Player, error)
	UpdatePlayer(ctx context.Context, p *model.Player) error
}

// ReleaseRepo persists the release queue.  ListReleases returns the
// newest releases first.
type ReleaseRepo interface {
	GetRelease(ctx context.Context, id uint64) (*model.ReleasedPlayer, error)
	CreateRelease(ctx context.Context, r *model.ReleasedPlayer) error
	UpdateRelease(ctx context.Context, r *model.ReleasedPlayer) error
	ListReleases(ctx context.Context, status model.ReleaseStatus) ([]model.ReleasedPlayer, error)
}
