package auction

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/fantasy-auction/internal/lock"
	"github.com/iliyamo/fantasy-auction/internal/model"
	"github.com/iliyamo/fantasy-auction/internal/repository"
)

// PlaceBid validates and records a bid.  On success the bid becomes the
// only WINNING bid of the lot and the stand-time clock restarts at now,
// whether or not the lot was close to closing.  Bidding never touches
// the bidder's cap or roster counters.
func (e *Engine) PlaceBid(ctx context.Context, itemID, bidderID uint64, amount decimal.Decimal, now time.Time) (BidResult, error) {
	var (
		res BidResult
		evs []Event
	)
	err := e.withLock(ctx, lock.ItemKey(itemID), func() error {
		return e.store.InTx(ctx, func(tx repository.Tx) error {
			var err error
			res, evs, err = placeBid(ctx, tx, itemID, bidderID, amount, now)
			return err
		})
	})
	if err != nil {
		r, err := conflictResult("place bid", err)
		return BidResult{Result: r}, err
	}
	e.publish(ctx, evs)
	return res, nil
}

func placeBid(ctx context.Context, tx repository.Tx, itemID, bidderID uint64, amount decimal.Decimal, now time.Time) (BidResult, []Event, error) {
	item, err := tx.GetItem(ctx, itemID)
	if isNotFound(err) {
		return BidResult{Result: fail("Auction item not found")}, nil, nil
	} else if err != nil {
		return BidResult{}, nil, err
	}
	auc, err := tx.GetAuction(ctx, item.AuctionID)
	if isNotFound(err) {
		return BidResult{Result: fail("Auction not found")}, nil, nil
	} else if err != nil {
		return BidResult{}, nil, err
	}
	bidder, err := tx.GetAccount(ctx, bidderID)
	if isNotFound(err) {
		return BidResult{Result: fail("User not found")}, nil, nil
	} else if err != nil {
		return BidResult{}, nil, err
	}

	if r := ValidateBid(item, auc, bidder, amount); !r.OK {
		return BidResult{Result: r}, nil, nil
	}

	bid := &model.Bid{
		AuctionItemID: item.ID,
		BidderID:      bidderID,
		Amount:        amount,
		BidTime:       now,
		Status:        model.BidActive,
	}
	if err := tx.CreateBid(ctx, bid); err != nil {
		return BidResult{}, nil, err
	}

	// once a bid lands the nomination can no longer be withdrawn
	if item.FirstBidTime == nil {
		first := now
		item.FirstBidTime = &first
		item.CanDeleteBid = false
	}
	last, end := now, now.Add(StandTimeRequired(auc.Type))
	item.LastBidTime = &last
	item.EndTime = &end
	current, holder := amount, bidderID
	item.CurrentBid = &current
	item.CurrentBidderID = &holder
	item.CurrentMinimumIncrement = MinimumIncrement(item)
	if err := tx.UpdateItem(ctx, item); err != nil {
		return BidResult{}, nil, err
	}

	bids, err := tx.ListBidsByAmountDesc(ctx, item.ID)
	if err != nil {
		return BidResult{}, nil, err
	}
	for _, b := range bids {
		if b.ID == bid.ID || b.Status == model.BidOutbid {
			continue
		}
		if err := tx.UpdateBidStatus(ctx, b.ID, model.BidOutbid); err != nil {
			return BidResult{}, nil, err
		}
	}
	if err := tx.UpdateBidStatus(ctx, bid.ID, model.BidWinning); err != nil {
		return BidResult{}, nil, err
	}
	bid.Status = model.BidWinning

	name, err := playerName(ctx, tx, item.PlayerID)
	if err != nil {
		return BidResult{}, nil, err
	}
	msg := fmt.Sprintf("Bid placed successfully for %s - %s. Auction ends at %s if no new bids.",
		name, money(amount), end.Format(time.RFC3339))
	ev := Event{
		Type:      EventBidPlaced,
		AuctionID: auc.ID,
		ItemID:    item.ID,
		PlayerID:  item.PlayerID,
		UserID:    bidderID,
		Amount:    amount,
		Message:   msg,
		At:        now,
	}
	return BidResult{Result: ok(msg), Bid: bid}, []Event{ev}, nil
}

// playerName falls back to "Player" when the player row is gone.
func playerName(ctx context.Context, tx repository.Tx, id uint64) (string, error) {
	p, err := tx.GetPlayer(ctx, id)
	if isNotFound(err) {
		return "Player", nil
	}
	if err != nil {
		return "", err
	}
	return p.Name, nil
}
