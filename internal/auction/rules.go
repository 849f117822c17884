// Package auction is the continuous free-agent auction and contract
// engine: bid validation, the soft-close stand time, awards, contract
// posting, buyouts and the two reconciliation sweeps.
//
// Every operation takes the current time from its caller and reports
// business outcomes as a Result.  A non-nil error always means an
// infrastructure fault and nothing was committed.
package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/fantasy-auction/internal/model"
)

// League money rules, in cap-units.
var (
	MajorLeagueFloor     = decimal.RequireFromString("0.5")
	MinorLeagueFloor     = decimal.RequireFromString("0.1")
	MajorLeagueIncrement = decimal.RequireFromString("1.0")
	MinorLeagueIncrement = decimal.RequireFromString("0.1")

	// ShortContractThreshold is the winning bid under which contracts are
	// limited to MaxShortContractYears.
	ShortContractThreshold = decimal.RequireFromString("0.75")

	buyoutDivisor = decimal.NewFromInt(2)
)

const (
	MinContractYears      = 1
	MaxContractYears      = 5
	MaxShortContractYears = 2

	// AmountPlaces is the finest precision a bid or starting bid may use.
	AmountPlaces = 2

	// ContractWindow is how long a winner has to post a contract.
	ContractWindow = 48 * time.Hour
)

// StandTimeRequired is how long a lot must go without a new bid before it
// can be awarded.
func StandTimeRequired(t model.AuctionType) time.Duration {
	if t == model.OffSeason {
		return 72 * time.Hour
	}
	return 24 * time.Hour
}

// ComplianceWindow is how long a winner has to bring an over-limit roster
// back under the limit after an award.
func ComplianceWindow(t model.AuctionType) time.Duration {
	if t == model.OffSeason {
		return 48 * time.Hour
	}
	return 24 * time.Hour
}

// StartingFloor is the lowest legal first bid for a classification.
func StartingFloor(minorLeaguer bool) decimal.Decimal {
	if minorLeaguer {
		return MinorLeagueFloor
	}
	return MajorLeagueFloor
}

// BuyoutFee is half the winning bid.
func BuyoutFee(winningBid decimal.Decimal) decimal.Decimal {
	return winningBid.Div(buyoutDivisor)
}

// ValidAmountPrecision reports whether d uses at most AmountPlaces
// decimal places.
func ValidAmountPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountPlaces))
}
