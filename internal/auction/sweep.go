package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/fantasy-auction/internal/lock"
	"github.com/iliyamo/fantasy-auction/internal/model"
	"github.com/iliyamo/fantasy-auction/internal/repository"
)

// SweepReport summarises one sweep run.  Skipped counts lots whose lock
// was busy or that no longer qualified; they are retried on the next run.
type SweepReport struct {
	Candidates int `json:"candidates"`
	Processed  int `json:"processed"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// ProcessExpiredContracts charges the buyout fee on every PENDING
// contract whose deadline is before now.  A failure on one contract is
// logged and the batch continues.
func (e *Engine) ProcessExpiredContracts(ctx context.Context, now time.Time) (SweepReport, error) {
	var rep SweepReport
	var expired []model.PendingContract
	err := e.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		expired, err = tx.ListExpiredContracts(ctx, now)
		return err
	})
	if err != nil {
		return rep, fmt.Errorf("list expired contracts: %w", err)
	}
	rep.Candidates = len(expired)

	for _, c := range expired {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		log := e.log.With().Uint64("contract_id", c.ID).Uint64("item_id", c.AuctionItemID).Logger()
		applied, err := e.sweepOne(ctx, c.AuctionItemID, func(tx repository.Tx) (bool, []Event, error) {
			cur, err := tx.GetContract(ctx, c.ID)
			if err != nil {
				return false, nil, err
			}
			// the deadline is rechecked because the row may have changed since listing
			if !cur.ContractDeadline.Before(now) {
				return false, nil, nil
			}
			return applyBuyoutFee(ctx, tx, cur, false, now)
		})
		switch {
		case errors.Is(err, lock.ErrNotAcquired):
			rep.Skipped++
			log.Debug().Msg("item busy, retrying next run")
		case err != nil:
			rep.Failed++
			log.Error().Err(err).Msg("expire contract failed")
		case applied:
			rep.Processed++
			log.Info().Str("fee", c.BuyoutFee.String()).Msg("contract expired, buyout fee applied")
		default:
			rep.Skipped++
		}
	}
	return rep, nil
}

// AutoAwardExpiredAuctions awards every lot of every ACTIVE auction whose
// stand time has elapsed.  Lots without bids are left alone.
func (e *Engine) AutoAwardExpiredAuctions(ctx context.Context, now time.Time) (SweepReport, error) {
	var rep SweepReport
	type candidate struct {
		itemID uint64
		typ    model.AuctionType
	}
	var ready []candidate
	err := e.store.InTx(ctx, func(tx repository.Tx) error {
		auctions, err := tx.ListAuctionsByStatus(ctx, model.AuctionActive)
		if err != nil {
			return err
		}
		for _, a := range auctions {
			items, err := tx.ListItems(ctx, a.ID, model.ItemActive)
			if err != nil {
				return err
			}
			for i := range items {
				if items[i].HasBids() && IsReadyToAward(&items[i], a.Type, now) {
					ready = append(ready, candidate{itemID: items[i].ID, typ: a.Type})
				}
			}
		}
		return nil
	})
	if err != nil {
		return rep, fmt.Errorf("list awardable items: %w", err)
	}
	rep.Candidates = len(ready)

	for _, c := range ready {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		log := e.log.With().Uint64("item_id", c.itemID).Logger()
		var msg string
		awarded, err := e.sweepOne(ctx, c.itemID, func(tx repository.Tx) (bool, []Event, error) {
			res, evs, err := awardPlayer(ctx, tx, c.itemID, now)
			msg = res.Message
			return res.OK, evs, err
		})
		switch {
		case errors.Is(err, lock.ErrNotAcquired):
			rep.Skipped++
			log.Debug().Msg("item busy, retrying next run")
		case err != nil:
			rep.Failed++
			log.Error().Err(err).Msg("auto award failed")
		case awarded:
			rep.Processed++
			log.Info().Str("auction_type", string(c.typ)).Msg(msg)
		default:
			rep.Skipped++
			log.Debug().Str("reason", msg).Msg("item not awarded")
		}
	}
	return rep, nil
}

// sweepOne runs fn for one lot if its lock is free right now.  Sweeps
// never wait: a busy lot returns lock.ErrNotAcquired.
func (e *Engine) sweepOne(ctx context.Context, itemID uint64, fn func(tx repository.Tx) (bool, []Event, error)) (bool, error) {
	release, err := e.locks.TryAcquire(ctx, lock.ItemKey(itemID))
	if err != nil {
		return false, err
	}
	defer release()

	var (
		done bool
		evs  []Event
	)
	err = e.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		done, evs, err = fn(tx)
		return err
	})
	if err != nil {
		return false, err
	}
	e.publish(ctx, evs)
	return done, nil
}
