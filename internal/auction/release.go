package auction

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/fantasy-auction/internal/lock"
	"github.com/iliyamo/fantasy-auction/internal/model"
	"github.com/iliyamo/fantasy-auction/internal/repository"
)

// ReleasePlayers drops rostered players back to free agency and queues
// them for the commissioner.  Owners may release only their own players;
// a commissioner may release anyone's.  The batch is all or nothing.
// The previous owner's roster count drops but committed salary stays on
// the cap.
func (e *Engine) ReleasePlayers(ctx context.Context, userID uint64, commissioner bool, playerIDs []uint64, now time.Time) (ReleaseResult, error) {
	ids := uniqueIDs(playerIDs)
	if len(ids) == 0 {
		return ReleaseResult{Result: fail("No players selected for release.")}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = lock.PlayerKey(id)
	}

	var (
		res ReleaseResult
		evs []Event
	)
	err := e.withLocks(ctx, keys, func() error {
		return e.store.InTx(ctx, func(tx repository.Tx) error {
			var err error
			res, evs, err = releasePlayers(ctx, tx, userID, commissioner, ids, now)
			if err != nil || !res.OK {
				evs = nil
			}
			return err
		})
	})
	if err != nil {
		return ReleaseResult{}, fmt.Errorf("release players: %w", err)
	}
	e.publish(ctx, evs)
	return res, nil
}

func releasePlayers(ctx context.Context, tx repository.Tx, userID uint64, commissioner bool, ids []uint64, now time.Time) (ReleaseResult, []Event, error) {
	players := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		p, err := tx.GetPlayer(ctx, id)
		if isNotFound(err) {
			return ReleaseResult{Result: fail("Player not found")}, nil, nil
		} else if err != nil {
			return ReleaseResult{}, nil, err
		}
		if p.OwnerID == nil {
			return ReleaseResult{Result: fail(fmt.Sprintf("Player %s is not on a roster", p.Name))}, nil, nil
		}
		if !commissioner && *p.OwnerID != userID {
			return ReleaseResult{Result: fail("You can only release your own players.")}, nil, nil
		}
		players = append(players, p)
	}

	res := ReleaseResult{Released: make([]model.ReleasedPlayer, 0, len(players))}
	evs := make([]Event, 0, len(players))
	for _, p := range players {
		owner := *p.OwnerID
		entry := model.ReleasedPlayer{
			PlayerID:               p.ID,
			PlayerName:             p.Name,
			Position:               p.Position,
			Team:                   p.Team,
			PreviousContractLength: p.ContractLength,
			PreviousContractAmount: p.ContractAmount,
			PreviousOwnerID:        &owner,
			ReleasedAt:             now,
			Status:                 model.ReleasePending,
		}
		if err := tx.CreateRelease(ctx, &entry); err != nil {
			return ReleaseResult{}, nil, err
		}

		acct, err := tx.GetAccount(ctx, owner)
		switch {
		case err == nil:
			if p.AuctionClassMinor() {
				acct.MinorLeagueRosterCount = max(acct.MinorLeagueRosterCount-1, 0)
			} else {
				acct.MajorLeagueRosterCount = max(acct.MajorLeagueRosterCount-1, 0)
			}
			if err := tx.UpdateAccount(ctx, acct); err != nil {
				return ReleaseResult{}, nil, err
			}
		case !isNotFound(err):
			return ReleaseResult{}, nil, err
		}

		p.OwnerID = nil
		p.ContractLength = 0
		p.ContractAmount = decimal.Zero
		p.AverageAnnualSalary = decimal.Zero
		p.ContractYear = 0
		if err := tx.UpdatePlayer(ctx, p); err != nil {
			return ReleaseResult{}, nil, err
		}

		res.Released = append(res.Released, entry)
		evs = append(evs, Event{
			Type:     EventPlayerReleased,
			PlayerID: p.ID,
			UserID:   owner,
			Amount:   entry.PreviousContractAmount,
			Message:  fmt.Sprintf("Player %s released to the auction queue", p.Name),
			At:       now,
		})
	}
	res.Result = ok(fmt.Sprintf("Successfully released %d player(s). They are waiting in the auction queue.", len(players)))
	return res, evs, nil
}

// ReleaseQueue lists the entries still waiting for a decision, newest
// first.
func (e *Engine) ReleaseQueue(ctx context.Context) ([]model.ReleasedPlayer, error) {
	var out []model.ReleasedPlayer
	err := e.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListReleases(ctx, model.ReleasePending)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("release queue: %w", err)
	}
	return out, nil
}

// AddReleasedPlayer nominates a queued player into auctionID and marks
// the entry ADDED_TO_AUCTION.  A failed nomination leaves the entry
// pending.
func (e *Engine) AddReleasedPlayer(ctx context.Context, auctionID, releaseID, nominatorID uint64, startingBid decimal.Decimal, now time.Time) (NominationResult, error) {
	entry, res, err := e.pendingRelease(ctx, releaseID)
	if err != nil || !res.OK {
		return NominationResult{Result: res}, err
	}

	var (
		nres NominationResult
		evs  []Event
	)
	err = e.withLock(ctx, lock.PlayerKey(entry.PlayerID), func() error {
		return e.store.InTx(ctx, func(tx repository.Tx) error {
			cur, err := tx.GetRelease(ctx, releaseID)
			if err != nil {
				return err
			}
			if cur.Status != model.ReleasePending {
				nres = NominationResult{Result: alreadyProcessed(cur)}
				return nil
			}
			nres, evs, err = nominatePlayer(ctx, tx, auctionID, cur.PlayerID, nominatorID, startingBid, now)
			if err != nil || !nres.OK {
				return err
			}
			cur.Status = model.ReleaseAddedToAuction
			return tx.UpdateRelease(ctx, cur)
		})
	})
	if err != nil {
		return NominationResult{}, fmt.Errorf("add released player: %w", err)
	}
	e.publish(ctx, evs)
	return nres, nil
}

// RejectReleasedPlayer closes a queue entry without nominating.  The
// player stays a free agent.
func (e *Engine) RejectReleasedPlayer(ctx context.Context, releaseID uint64, now time.Time) (Result, error) {
	var (
		res Result
		ev  *Event
	)
	err := e.store.InTx(ctx, func(tx repository.Tx) error {
		cur, err := tx.GetRelease(ctx, releaseID)
		if isNotFound(err) {
			res = fail("Released player not found")
			return nil
		} else if err != nil {
			return err
		}
		if cur.Status != model.ReleasePending {
			res = alreadyProcessed(cur)
			return nil
		}
		cur.Status = model.ReleaseRejected
		if err := tx.UpdateRelease(ctx, cur); err != nil {
			return err
		}
		res = ok(fmt.Sprintf("Player %s rejected from auction queue", cur.PlayerName))
		ev = &Event{Type: EventReleaseRejected, PlayerID: cur.PlayerID, Message: res.Message, At: now}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("reject released player: %w", err)
	}
	if ev != nil {
		e.publish(ctx, []Event{*ev})
	}
	return res, nil
}

func (e *Engine) pendingRelease(ctx context.Context, id uint64) (*model.ReleasedPlayer, Result, error) {
	var (
		entry *model.ReleasedPlayer
		res   Result
	)
	err := e.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		entry, err = tx.GetRelease(ctx, id)
		switch {
		case isNotFound(err):
			res = fail("Released player not found")
		case err != nil:
			return err
		case entry.Status != model.ReleasePending:
			res = alreadyProcessed(entry)
		default:
			res = ok("")
		}
		return nil
	})
	if err != nil {
		return nil, Result{}, fmt.Errorf("load released player: %w", err)
	}
	return entry, res, nil
}

func alreadyProcessed(r *model.ReleasedPlayer) Result {
	return fail(fmt.Sprintf("Released player already processed (status: %s)", r.Status))
}

// withLocks takes keys in order, so callers must pass them sorted.
func (e *Engine) withLocks(ctx context.Context, keys []string, fn func() error) error {
	if len(keys) == 0 {
		return fn()
	}
	return e.withLock(ctx, keys[0], func() error {
		return e.withLocks(ctx, keys[1:], fn)
	})
}

func uniqueIDs(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		if id != 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
