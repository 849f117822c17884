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

// AwardPlayer closes a lot whose stand time has elapsed and opens a
// pending contract for the high bidder.
func (e *Engine) AwardPlayer(ctx context.Context, itemID uint64, now time.Time) (Result, error) {
	var (
		res Result
		evs []Event
	)
	err := e.withLock(ctx, lock.ItemKey(itemID), func() error {
		return e.store.InTx(ctx, func(tx repository.Tx) error {
			var err error
			res, evs, err = awardPlayer(ctx, tx, itemID, now)
			return err
		})
	})
	if err != nil {
		return conflictResult("award player", err)
	}
	e.publish(ctx, evs)
	return res, nil
}

func awardPlayer(ctx context.Context, tx repository.Tx, itemID uint64, now time.Time) (Result, []Event, error) {
	item, err := tx.GetItem(ctx, itemID)
	if isNotFound(err) {
		return fail("Auction item not found"), nil, nil
	} else if err != nil {
		return Result{}, nil, err
	}
	auc, err := tx.GetAuction(ctx, item.AuctionID)
	if isNotFound(err) {
		return fail("Auction not found"), nil, nil
	} else if err != nil {
		return Result{}, nil, err
	}
	if item.Status != model.ItemActive {
		return fail("This auction is no longer active"), nil, nil
	}
	if !item.HasBids() {
		return fail("No bids placed on this item"), nil, nil
	}
	if !IsReadyToAward(item, auc.Type, now) {
		return fail(fmt.Sprintf("Player cannot be awarded yet. %d hours remaining since last bid.",
			HoursRemaining(item, auc.Type, now))), nil, nil
	}
	player, err := tx.GetPlayer(ctx, item.PlayerID)
	if isNotFound(err) {
		return fail("Player not found"), nil, nil
	} else if err != nil {
		return Result{}, nil, err
	}
	winner, err := tx.GetAccount(ctx, *item.CurrentBidderID)
	if isNotFound(err) {
		return fail("Winner not found"), nil, nil
	} else if err != nil {
		return Result{}, nil, err
	}

	winning := *item.CurrentBid
	contract := &model.PendingContract{
		AuctionItemID:    item.ID,
		PlayerID:         player.ID,
		WinnerID:         winner.ID,
		WinningBid:       winning,
		WonTime:          now,
		ContractDeadline: now.Add(ContractWindow),
		Status:           model.ContractPending,
		BuyoutFee:        BuyoutFee(winning),
		IsMinorLeaguer:   item.IsMinorLeaguer,
	}
	if err := tx.CreateContract(ctx, contract); err != nil {
		return Result{}, nil, err
	}

	deadline, compliance := contract.ContractDeadline, now.Add(ComplianceWindow(auc.Type))
	item.Status = model.ItemAwaitingContract
	item.ContractDeadline = &deadline
	item.RosterComplianceDeadline = &compliance
	if err := tx.UpdateItem(ctx, item); err != nil {
		return Result{}, nil, err
	}

	msg := fmt.Sprintf("Player %s awarded to %s for %s AAS. Contract must be posted within %d hours or buyout fee of %s will apply.",
		player.Name, winner.Username, money(winning), int(ContractWindow.Hours()), money(contract.BuyoutFee))
	ev := Event{
		Type:       EventPlayerAwarded,
		AuctionID:  auc.ID,
		ItemID:     item.ID,
		PlayerID:   player.ID,
		UserID:     winner.ID,
		ContractID: contract.ID,
		Amount:     winning,
		Message:    msg,
		At:         now,
	}
	return ok(msg), []Event{ev}, nil
}

// contractItem looks up which lot a contract belongs to so the caller
// can take that lot's lock before doing the real work.
func (e *Engine) contractItem(ctx context.Context, contractID uint64) (uint64, bool, error) {
	var itemID uint64
	err := e.store.InTx(ctx, func(tx repository.Tx) error {
		c, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		itemID = c.AuctionItemID
		return nil
	})
	if isNotFound(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load contract %d: %w", contractID, err)
	}
	return itemID, true, nil
}

// withContractLock resolves the contract's lot, locks it and runs fn in
// a transaction.  A missing contract yields a failure Result.
func (e *Engine) withContractLock(ctx context.Context, op string, contractID uint64,
	fn func(tx repository.Tx) (Result, []Event, error)) (Result, error) {
	itemID, found, err := e.contractItem(ctx, contractID)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return fail("Pending contract not found"), nil
	}
	var (
		res Result
		evs []Event
	)
	err = e.withLock(ctx, lock.ItemKey(itemID), func() error {
		return e.store.InTx(ctx, func(tx repository.Tx) error {
			var err error
			res, evs, err = fn(tx)
			return err
		})
	})
	if err != nil {
		return conflictResult(op, err)
	}
	e.publish(ctx, evs)
	return res, nil
}

// PostContract signs the awarded player for the given number of years.
// Past the deadline the buyout fee is charged instead and the call fails;
// the charge is committed even though the Result is a failure.
func (e *Engine) PostContract(ctx context.Context, contractID, userID uint64, years int, now time.Time) (Result, error) {
	return e.withContractLock(ctx, "post contract", contractID, func(tx repository.Tx) (Result, []Event, error) {
		return postContract(ctx, tx, contractID, userID, years, now)
	})
}

func postContract(ctx context.Context, tx repository.Tx, contractID, userID uint64, years int, now time.Time) (Result, []Event, error) {
	c, err := tx.GetContract(ctx, contractID)
	if isNotFound(err) {
		return fail("Pending contract not found"), nil, nil
	} else if err != nil {
		return Result{}, nil, err
	}
	if c.WinnerID != userID {
		return fail("You are not the winner of this auction"), nil, nil
	}
	if c.Status != model.ContractPending {
		return fail(fmt.Sprintf("This contract is no longer pending (status %s)", c.Status)), nil, nil
	}
	if c.DeadlinePassed(now) {
		_, evs, err := applyBuyoutFee(ctx, tx, c, false, now)
		if err != nil {
			return Result{}, nil, err
		}
		return fail(fmt.Sprintf("Contract deadline has passed. Buyout fee of %s has been applied to your cap.",
			money(c.BuyoutFee))), evs, nil
	}

	item, err := tx.GetItem(ctx, c.AuctionItemID)
	if isNotFound(err) {
		return fail("Auction item not found"), nil, nil
	} else if err != nil {
		return Result{}, nil, err
	}
	auc, err := tx.GetAuction(ctx, item.AuctionID)
	if isNotFound(err) {
		return fail("Auction not found"), nil, nil
	} else if err != nil {
		return Result{}, nil, err
	}
	if r := ValidateContractLength(c.WinningBid, years); !r.OK {
		return r, nil, nil
	}
	player, err := tx.GetPlayer(ctx, c.PlayerID)
	if isNotFound(err) {
		return fail("Player not found"), nil, nil
	} else if err != nil {
		return Result{}, nil, err
	}
	user, err := tx.GetAccount(ctx, userID)
	if isNotFound(err) {
		return fail("User not found"), nil, nil
	} else if err != nil {
		return Result{}, nil, err
	}

	total := c.WinningBid.Mul(decimal.NewFromInt(int64(years)))
	owner := user.ID
	player.OwnerID = &owner
	player.ContractLength = years
	player.ContractAmount = total
	player.AverageAnnualSalary = c.WinningBid
	player.ContractYear = 1
	if err := tx.UpdatePlayer(ctx, player); err != nil {
		return Result{}, nil, err
	}

	user.CurrentSalaryUsed = user.CurrentSalaryUsed.Add(c.WinningBid)
	if c.IsMinorLeaguer {
		user.MinorLeagueRosterCount++
	} else {
		user.MajorLeagueRosterCount++
	}
	if err := tx.UpdateAccount(ctx, user); err != nil {
		return Result{}, nil, err
	}

	y := years
	c.ContractYears = &y
	c.Status = model.ContractPosted
	if err := tx.UpdateContract(ctx, c); err != nil {
		return Result{}, nil, err
	}

	item.Status = model.ItemSold
	if err := tx.UpdateItem(ctx, item); err != nil {
		return Result{}, nil, err
	}

	msg := fmt.Sprintf("Contract posted for %s: %d years at %s AAS (Total: %s).",
		player.Name, years, money(c.WinningBid), money(total))
	if w := rosterWarning(user, c.IsMinorLeaguer, auc.Type, item.RosterComplianceDeadline); w != "" {
		msg += " " + w
	}
	ev := Event{
		Type:       EventContractPosted,
		AuctionID:  auc.ID,
		ItemID:     item.ID,
		PlayerID:   player.ID,
		UserID:     user.ID,
		ContractID: c.ID,
		Amount:     c.WinningBid,
		Message:    msg,
		At:         now,
	}
	return ok(msg), []Event{ev}, nil
}

// rosterWarning is non-empty when the roster the player joined is now
// over its limit.
func rosterWarning(u *model.UserAccount, minor bool, t model.AuctionType, deadline *time.Time) string {
	count, limit, label := u.MajorLeagueRosterCount, model.MaxMajorLeagueRoster, "major league"
	if minor {
		count, limit, label = u.MinorLeagueRosterCount, model.MaxMinorLeagueRoster, "minor league"
	}
	if count <= limit {
		return ""
	}
	hours := int(ComplianceWindow(t).Hours())
	by := ""
	if deadline != nil {
		by = " (by " + deadline.Format(time.RFC3339) + ")"
	}
	return fmt.Sprintf("WARNING: You now have %d %s players (max %d). You have %d hours%s to make roster legal or automatic buyout will occur.",
		count, label, limit, hours, by)
}

// ApplyBuyoutFee charges the fee for a missed deadline.  A contract that
// is no longer PENDING is left untouched, so repeated calls charge once.
func (e *Engine) ApplyBuyoutFee(ctx context.Context, contractID uint64, now time.Time) (Result, error) {
	return e.withContractLock(ctx, "apply buyout fee", contractID, func(tx repository.Tx) (Result, []Event, error) {
		c, err := tx.GetContract(ctx, contractID)
		if isNotFound(err) {
			return fail("Pending contract not found"), nil, nil
		} else if err != nil {
			return Result{}, nil, err
		}
		applied, evs, err := applyBuyoutFee(ctx, tx, c, false, now)
		if err != nil {
			return Result{}, nil, err
		}
		if !applied {
			return fail(fmt.Sprintf("Contract is already %s; no fee applied", c.Status)), nil, nil
		}
		return ok(fmt.Sprintf("Buyout fee of %s applied. Player returned to free agency.", money(c.BuyoutFee))), evs, nil
	})
}

// BuyoutPlayer lets the winner walk away from a pending contract for the
// buyout fee.
func (e *Engine) BuyoutPlayer(ctx context.Context, contractID, userID uint64, now time.Time) (Result, error) {
	return e.withContractLock(ctx, "buyout player", contractID, func(tx repository.Tx) (Result, []Event, error) {
		c, err := tx.GetContract(ctx, contractID)
		if isNotFound(err) {
			return fail("Pending contract not found"), nil, nil
		} else if err != nil {
			return Result{}, nil, err
		}
		if c.WinnerID != userID {
			return fail("You are not the winner of this auction"), nil, nil
		}
		if _, err := tx.GetAccount(ctx, userID); isNotFound(err) {
			return fail("User not found"), nil, nil
		} else if err != nil {
			return Result{}, nil, err
		}
		applied, evs, err := applyBuyoutFee(ctx, tx, c, true, now)
		if err != nil {
			return Result{}, nil, err
		}
		if !applied {
			return fail(fmt.Sprintf("Only pending contracts can be bought out (status %s)", c.Status)), nil, nil
		}
		name, err := playerName(ctx, tx, c.PlayerID)
		if err != nil {
			return Result{}, nil, err
		}
		return ok(fmt.Sprintf("%s bought out. Fee of %s applied to your cap. Player returned to free agency.",
			name, money(c.BuyoutFee))), evs, nil
	})
}

// applyBuyoutFee debits the fee from the winner, closes the contract and
// the lot, and releases the player.  voluntary selects BOUGHT_OUT over
// EXPIRED.  It reports false and writes nothing unless c is PENDING.
func applyBuyoutFee(ctx context.Context, tx repository.Tx, c *model.PendingContract, voluntary bool, now time.Time) (bool, []Event, error) {
	if c.Status != model.ContractPending {
		return false, nil, nil
	}

	winner, err := tx.GetAccount(ctx, c.WinnerID)
	switch {
	case err == nil:
		winner.CurrentSalaryUsed = winner.CurrentSalaryUsed.Add(c.BuyoutFee)
		if err := tx.UpdateAccount(ctx, winner); err != nil {
			return false, nil, err
		}
	case !isNotFound(err):
		return false, nil, err
	}

	contractStatus, itemStatus, evType := model.ContractExpired, model.ItemContractExpired, EventContractExpired
	if voluntary {
		contractStatus, itemStatus, evType = model.ContractBoughtOut, model.ItemBoughtOut, EventPlayerBoughtOut
	}
	c.Status = contractStatus
	if err := tx.UpdateContract(ctx, c); err != nil {
		return false, nil, err
	}

	var auctionID uint64
	item, err := tx.GetItem(ctx, c.AuctionItemID)
	switch {
	case err == nil:
		auctionID = item.AuctionID
		item.Status = itemStatus
		if err := tx.UpdateItem(ctx, item); err != nil {
			return false, nil, err
		}
	case !isNotFound(err):
		return false, nil, err
	}

	player, err := tx.GetPlayer(ctx, c.PlayerID)
	switch {
	case err == nil:
		player.OwnerID = nil
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return false, nil, err
		}
	case !isNotFound(err):
		return false, nil, err
	}

	ev := Event{
		Type:       evType,
		AuctionID:  auctionID,
		ItemID:     c.AuctionItemID,
		PlayerID:   c.PlayerID,
		UserID:     c.WinnerID,
		ContractID: c.ID,
		Amount:     c.BuyoutFee,
		Message:    fmt.Sprintf("Buyout fee of %s applied to user %d", money(c.BuyoutFee), c.WinnerID),
		At:         now,
	}
	return true, []Event{ev}, nil
}
