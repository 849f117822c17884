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

// NominatePlayer puts a free agent up for bidding in auctionID.  The
// starting bid is raised to the classification floor when lower; minor
// leaguers and rookies share the minor league floor.  Callers are
// expected to have checked that nominatorID is a commissioner.
func (e *Engine) NominatePlayer(ctx context.Context, auctionID, playerID, nominatorID uint64, startingBid decimal.Decimal, now time.Time) (NominationResult, error) {
	var (
		res NominationResult
		evs []Event
	)
	err := e.withLock(ctx, lock.PlayerKey(playerID), func() error {
		return e.store.InTx(ctx, func(tx repository.Tx) error {
			var err error
			res, evs, err = nominatePlayer(ctx, tx, auctionID, playerID, nominatorID, startingBid, now)
			return err
		})
	})
	if err != nil {
		return NominationResult{}, fmt.Errorf("nominate player: %w", err)
	}
	e.publish(ctx, evs)
	return res, nil
}

func nominatePlayer(ctx context.Context, tx repository.Tx, auctionID, playerID, nominatorID uint64, startingBid decimal.Decimal, now time.Time) (NominationResult, []Event, error) {
	failed := func(msg string) (NominationResult, []Event, error) {
		return NominationResult{Result: fail(msg)}, nil, nil
	}

	auc, err := tx.GetAuction(ctx, auctionID)
	if isNotFound(err) {
		return failed("Auction not found")
	} else if err != nil {
		return NominationResult{}, nil, err
	}
	if auc.Status != model.AuctionActive {
		return failed("Auction is not active")
	}
	player, err := tx.GetPlayer(ctx, playerID)
	if isNotFound(err) {
		return failed("Player not found")
	} else if err != nil {
		return NominationResult{}, nil, err
	}
	if player.OwnerID != nil {
		return failed("Player is not a free agent")
	}
	for _, st := range []model.ItemStatus{model.ItemActive, model.ItemAwaitingContract} {
		if _, err := tx.FindItemByPlayer(ctx, playerID, st); err == nil {
			if st == model.ItemAwaitingContract {
				return failed("Player has been won and is awaiting a contract")
			}
			return failed("Player is already in auction")
		} else if !isNotFound(err) {
			return NominationResult{}, nil, err
		}
	}

	if !ValidAmountPrecision(startingBid) {
		return failed(fmt.Sprintf("Starting bids are limited to %d decimal places", AmountPlaces))
	}

	minor := player.AuctionClassMinor()
	if floor := StartingFloor(minor); startingBid.LessThan(floor) {
		startingBid = floor
	}
	item := &model.AuctionItem{
		PlayerID:                player.ID,
		AuctionID:               auc.ID,
		StartingBid:             startingBid,
		NominatedByUserID:       nominatorID,
		AddedTime:               now,
		Status:                  model.ItemActive,
		CanDeleteBid:            true,
		CurrentMinimumIncrement: decimal.Zero,
		IsMinorLeaguer:          minor,
	}
	if err := tx.CreateItem(ctx, item); err != nil {
		return NominationResult{}, nil, err
	}

	msg := fmt.Sprintf("Player %s added to auction with starting bid %s", player.Name, money(startingBid))
	ev := Event{
		Type:      EventPlayerNominated,
		AuctionID: auc.ID,
		ItemID:    item.ID,
		PlayerID:  player.ID,
		UserID:    nominatorID,
		Amount:    startingBid,
		Message:   msg,
		At:        now,
	}
	return NominationResult{Result: ok(msg), Item: item}, []Event{ev}, nil
}

// RemoveItem withdraws a lot.  A lot with a bidder is awarded instead,
// subject to the usual stand-time rule; a lot without bids is REMOVED.
func (e *Engine) RemoveItem(ctx context.Context, itemID uint64, now time.Time) (Result, error) {
	var (
		res Result
		evs []Event
	)
	err := e.withLock(ctx, lock.ItemKey(itemID), func() error {
		return e.store.InTx(ctx, func(tx repository.Tx) error {
			item, err := tx.GetItem(ctx, itemID)
			if isNotFound(err) {
				res = fail("Auction item not found")
				return nil
			} else if err != nil {
				return err
			}
			if item.HasBids() {
				res, evs, err = awardPlayer(ctx, tx, itemID, now)
				return err
			}
			if item.Status != model.ItemActive {
				res = fail("Only active lots can be removed")
				return nil
			}
			item.Status = model.ItemRemoved
			if err := tx.UpdateItem(ctx, item); err != nil {
				return err
			}
			res = ok("Player removed from auction (no bids)")
			evs = []Event{{
				Type:      EventItemRemoved,
				AuctionID: item.AuctionID,
				ItemID:    item.ID,
				PlayerID:  item.PlayerID,
				Message:   res.Message,
				At:        now,
			}}
			return nil
		})
	})
	if err != nil {
		return conflictResult("remove item", err)
	}
	e.publish(ctx, evs)
	return res, nil
}
