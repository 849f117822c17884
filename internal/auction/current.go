package auction

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/fantasy-auction/internal/lock"
	"github.com/iliyamo/fantasy-auction/internal/model"
	"github.com/iliyamo/fantasy-auction/internal/repository"
)

const mainAuctionName = "Main Player Auction"

var typeDescriptions = map[model.AuctionType]string{
	model.InSeason:  "In-Season Free Agency: a lot is awarded once it stands 24 hours after its last bid.",
	model.OffSeason: "Off-Season Free Agency: a lot is awarded once it stands 72 hours after its last bid.",
}

// CurrentAuctionProvider resolves "the" main auction: the first ACTIVE
// auction by id.
type CurrentAuctionProvider struct {
	store repository.Store
	locks lock.Locker
}

func NewCurrentAuctionProvider(store repository.Store, locks lock.Locker) *CurrentAuctionProvider {
	return &CurrentAuctionProvider{store: store, locks: locks}
}

// Current returns the main auction or repository.ErrNotFound.
func (p *CurrentAuctionProvider) Current(ctx context.Context) (*model.Auction, error) {
	var out *model.Auction
	err := p.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		out, err = firstActive(ctx, tx)
		return err
	})
	return out, err
}

func firstActive(ctx context.Context, tx repository.Tx) (*model.Auction, error) {
	list, err := tx.ListAuctionsByStatus(ctx, model.AuctionActive)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, repository.ErrNotFound
	}
	a := list[0]
	return &a, nil
}

// GetOrCreate returns the main auction, creating an IN_SEASON auction
// running for a year when none is active.
func (p *CurrentAuctionProvider) GetOrCreate(ctx context.Context, commissionerID uint64, now time.Time) (*model.Auction, error) {
	release, err := p.locks.Acquire(ctx, lock.MainAuctionKey)
	if err != nil {
		return nil, err
	}
	defer release()

	var out *model.Auction
	err = p.store.InTx(ctx, func(tx repository.Tx) error {
		a, err := firstActive(ctx, tx)
		if err == nil {
			out = a
			return nil
		}
		if !isNotFound(err) {
			return err
		}
		a = &model.Auction{
			Name:           mainAuctionName,
			StartTime:      now,
			EndTime:        now.AddDate(1, 0, 0),
			CommissionerID: commissionerID,
			Status:         model.AuctionActive,
			Type:           model.InSeason,
			Description:    typeDescriptions[model.InSeason],
		}
		if err := tx.CreateAuction(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get or create main auction: %w", err)
	}
	return out, nil
}

// ToggleType flips the main auction between IN_SEASON and OFF_SEASON.
// Lots already counting down pick up the new stand time at their next
// check.
func (p *CurrentAuctionProvider) ToggleType(ctx context.Context, commissionerID uint64, now time.Time) (Result, error) {
	a, err := p.GetOrCreate(ctx, commissionerID, now)
	if err != nil {
		return Result{}, err
	}
	var res Result
	err = p.store.InTx(ctx, func(tx repository.Tx) error {
		cur, err := tx.GetAuction(ctx, a.ID)
		if err != nil {
			return err
		}
		next, label := model.OffSeason, "Off-Season"
		if cur.Type == model.OffSeason {
			next, label = model.InSeason, "In-Season"
		}
		cur.Type = next
		cur.Description = typeDescriptions[cur.Type]
		if err := tx.UpdateAuction(ctx, cur); err != nil {
			return err
		}
		res = ok("Auction type changed to " + label + " Free Agency")
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("toggle auction type: %w", err)
	}
	return res, nil
}
