package auction

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/fantasy-auction/internal/model"
)

// ValidateBid checks a bid against the lot, its auction and the bidder's
// account.  Checks run in a fixed order and the first failure wins:
// lot active, amount precision, cap space, roster space, minimum bid.
// It has no side effects.
func ValidateBid(item *model.AuctionItem, auc *model.Auction, bidder *model.UserAccount, amount decimal.Decimal) Result {
	switch {
	case item == nil:
		return fail("Auction item not found")
	case item.Status != model.ItemActive:
		return fail("This auction is no longer active")
	case auc == nil:
		return fail("Auction not found")
	case bidder == nil:
		return fail("User not found")
	}

	if !ValidAmountPrecision(amount) {
		return fail(fmt.Sprintf("Bid amounts are limited to %d decimal places", AmountPlaces))
	}

	if !bidder.CanAfford(amount) {
		return fail(fmt.Sprintf("INVALID BID: This bid would exceed the %s salary cap. Your available cap space is %s. "+
			"Current salary: %s, Bid amount: %s",
			money(bidder.SalaryCap), money(bidder.AvailableCapSpace()), money(bidder.CurrentSalaryUsed), money(amount)))
	}

	if !bidder.HasRosterSpace(item.IsMinorLeaguer) {
		roster := fmt.Sprintf("major league (%d max)", model.MaxMajorLeagueRoster)
		if item.IsMinorLeaguer {
			roster = fmt.Sprintf("minor league (%d max)", model.MaxMinorLeagueRoster)
		}
		return fail("You have reached the " + roster + " roster limit. You must make room before bidding.")
	}

	if minBid := MinimumNextBid(item); amount.LessThan(minBid) {
		if item.CurrentBid == nil {
			class := "MLB"
			if item.IsMinorLeaguer {
				class = "minor league"
			}
			return fail(fmt.Sprintf("Minimum starting bid for %s players is %s", class, money(minBid)))
		}
		return fail(fmt.Sprintf("Minimum bid is %s (current bid %s + %s increment)",
			money(minBid), money(*item.CurrentBid), money(MinimumIncrement(item))))
	}

	return ok("Bid is valid")
}

// ValidateContractLength applies the 1 to 5 year range and the two-year
// limit for cheap winning bids.
func ValidateContractLength(winningBid decimal.Decimal, years int) Result {
	if years < MinContractYears || years > MaxContractYears {
		return fail(fmt.Sprintf("Contract must be between %d and %d years", MinContractYears, MaxContractYears))
	}
	if winningBid.LessThan(ShortContractThreshold) && years > MaxShortContractYears {
		return fail(fmt.Sprintf("Players signed under %s can only receive max %d-year contracts",
			money(ShortContractThreshold), MaxShortContractYears))
	}
	return ok("Contract length is valid")
}
