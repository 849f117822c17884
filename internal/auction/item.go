package auction

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/fantasy-auction/internal/model"
)

// MinimumIncrement is zero before the first bid and a fixed amount keyed
// by classification afterwards.
func MinimumIncrement(item *model.AuctionItem) decimal.Decimal {
	if item.CurrentBid == nil {
		return decimal.Zero
	}
	if item.IsMinorLeaguer {
		return MinorLeagueIncrement
	}
	return MajorLeagueIncrement
}

// MinimumNextBid is the lowest amount the validator accepts.  Before the
// first bid it is the classification floor, or the nominated starting bid
// when that is higher.
func MinimumNextBid(item *model.AuctionItem) decimal.Decimal {
	if item.CurrentBid == nil {
		return decimal.Max(StartingFloor(item.IsMinorLeaguer), item.StartingBid)
	}
	return item.CurrentBid.Add(MinimumIncrement(item))
}

// IsReadyToAward reports whether the stand time has fully elapsed since
// the last bid.  A lot without bids is never ready.
func IsReadyToAward(item *model.AuctionItem, t model.AuctionType, now time.Time) bool {
	if item.LastBidTime == nil {
		return false
	}
	return now.Sub(*item.LastBidTime) >= StandTimeRequired(t)
}

// HoursRemaining is the whole number of hours, rounded up, until the lot
// can be awarded: 0 once the stand time has elapsed, -1 without bids.
func HoursRemaining(item *model.AuctionItem, t model.AuctionType, now time.Time) int {
	if item.LastBidTime == nil {
		return -1
	}
	left := item.LastBidTime.Add(StandTimeRequired(t)).Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours()))
}
