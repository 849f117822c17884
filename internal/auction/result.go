package auction

import (
	"github.com/shopspring/decimal"

	"github.com/iliyamo/fantasy-auction/internal/model"
)

// Result is the outcome of a business operation.  Message is meant for
// the end user in both branches.
type Result struct {
	OK      bool
	Message string
}

// BidResult carries the stored bid when the bid was accepted.
type BidResult struct {
	Result
	Bid *model.Bid
}

// NominationResult carries the new lot when the nomination succeeded.
type NominationResult struct {
	Result
	Item *model.AuctionItem
}

// ReleaseResult carries the new queue entries when a release succeeded.
type ReleaseResult struct {
	Result
	Released []model.ReleasedPlayer
}

func ok(msg string) Result   { return Result{OK: true, Message: msg} }
func fail(msg string) Result { return Result{Message: msg} }

// money renders cap-units the way the league quotes them, e.g. $1.5M.
func money(d decimal.Decimal) string {
	return "$" + d.Round(2).String() + "M"
}
