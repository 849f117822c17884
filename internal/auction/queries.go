package auction

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/fantasy-auction/internal/model"
	"github.com/iliyamo/fantasy-auction/internal/repository"
)

// BoardItem is one active lot as shown on the auction board.
type BoardItem struct {
	Item           model.AuctionItem
	Player         *model.Player
	MinimumNextBid decimal.Decimal
	HoursRemaining int
}

// Board is the read model of one auction's active lots.
type Board struct {
	Auction model.Auction
	Items   []BoardItem
}

// Board lists the active lots of auctionID with their derived figures.
func (e *Engine) Board(ctx context.Context, auctionID uint64, now time.Time) (*Board, error) {
	var b *Board
	err := e.store.InTx(ctx, func(tx repository.Tx) error {
		a, err := tx.GetAuction(ctx, auctionID)
		if err != nil {
			return err
		}
		items, err := tx.ListItems(ctx, a.ID, model.ItemActive)
		if err != nil {
			return err
		}
		b = &Board{Auction: *a, Items: make([]BoardItem, 0, len(items))}
		for i := range items {
			bi := BoardItem{
				Item:           items[i],
				MinimumNextBid: MinimumNextBid(&items[i]),
				HoursRemaining: HoursRemaining(&items[i], a.Type, now),
			}
			p, err := tx.GetPlayer(ctx, items[i].PlayerID)
			switch {
			case err == nil:
				bi.Player = p
			case !isNotFound(err):
				return err
			}
			b.Items = append(b.Items, bi)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	return b, nil
}

// BidsByBidder returns a user's bids, newest first.
func (e *Engine) BidsByBidder(ctx context.Context, bidderID uint64) ([]model.Bid, error) {
	var out []model.Bid
	err := e.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListBidsByBidder(ctx, bidderID)
		return err
	})
	return out, err
}

// BidHistory returns a lot's bids, highest first.  Unknown lots yield
// repository.ErrNotFound.
func (e *Engine) BidHistory(ctx context.Context, itemID uint64) ([]model.Bid, error) {
	var out []model.Bid
	err := e.store.InTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetItem(ctx, itemID); err != nil {
			return err
		}
		var err error
		out, err = tx.ListBidsByAmountDesc(ctx, itemID)
		return err
	})
	return out, err
}

// PendingContracts returns the contracts a user still has to post.
func (e *Engine) PendingContracts(ctx context.Context, winnerID uint64) ([]model.PendingContract, error) {
	var out []model.PendingContract
	err := e.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListContractsByWinner(ctx, winnerID, model.ContractPending)
		return err
	})
	return out, err
}
