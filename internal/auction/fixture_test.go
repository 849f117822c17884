package auction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fantasy-auction/internal/lock"
	"github.com/iliyamo/fantasy-auction/internal/model"
	"github.com/iliyamo/fantasy-auction/internal/repository"
)

var t0 = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	t         *testing.T
	ctx       context.Context
	store     *repository.MemoryStore
	locks     *lock.Local
	eng       *Engine
	events    *recorder
	auctionID uint64
	commish   uint64
}

func newFixture(t *testing.T, typ model.AuctionType) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		store:  repository.NewMemoryStore(),
		locks:  lock.NewLocal(),
		events: &recorder{},
	}
	f.eng = New(f.store, f.locks, WithEvents(f.events), WithLockWait(time.Second))
	f.commish = f.store.SeedAccount(model.UserAccount{Username: "commish", Role: "COMMISSIONER"})
	require.NoError(t, f.store.InTx(f.ctx, func(tx repository.Tx) error {
		a := &model.Auction{
			Name:           "Main Player Auction",
			StartTime:      t0.Add(-time.Hour),
			EndTime:        t0.AddDate(1, 0, 0),
			CommissionerID: f.commish,
			Status:         model.AuctionActive,
			Type:           typ,
		}
		err := tx.CreateAuction(f.ctx, a)
		f.auctionID = a.ID
		return err
	}))
	return f
}

func (f *fixture) owner(name string) uint64 {
	return f.store.SeedAccount(model.UserAccount{Username: name, Role: "OWNER"})
}

func (f *fixture) player(name string, minor bool) uint64 {
	return f.store.SeedPlayer(model.Player{Name: name, IsMinorLeaguer: minor})
}

// lot nominates a new free agent at the floor and returns the lot id.
func (f *fixture) lot(name string, minor bool) uint64 {
	f.t.Helper()
	res, err := f.eng.NominatePlayer(f.ctx, f.auctionID, f.player(name, minor), f.commish, decimal.Zero, t0)
	require.NoError(f.t, err)
	require.True(f.t, res.OK, res.Message)
	return res.Item.ID
}

func (f *fixture) bid(itemID, bidder uint64, amount string, at time.Time) BidResult {
	f.t.Helper()
	res, err := f.eng.PlaceBid(f.ctx, itemID, bidder, dec(amount), at)
	require.NoError(f.t, err)
	return res
}

func (f *fixture) read(fn func(tx repository.Tx)) {
	f.t.Helper()
	require.NoError(f.t, f.store.InTx(f.ctx, func(tx repository.Tx) error {
		fn(tx)
		return nil
	}))
}

func (f *fixture) item(id uint64) *model.AuctionItem {
	f.t.Helper()
	var out *model.AuctionItem
	f.read(func(tx repository.Tx) {
		var err error
		out, err = tx.GetItem(f.ctx, id)
		require.NoError(f.t, err)
	})
	return out
}

func (f *fixture) account(id uint64) *model.UserAccount {
	f.t.Helper()
	var out *model.UserAccount
	f.read(func(tx repository.Tx) {
		var err error
		out, err = tx.GetAccount(f.ctx, id)
		require.NoError(f.t, err)
	})
	return out
}

func (f *fixture) playerRow(id uint64) *model.Player {
	f.t.Helper()
	var out *model.Player
	f.read(func(tx repository.Tx) {
		var err error
		out, err = tx.GetPlayer(f.ctx, id)
		require.NoError(f.t, err)
	})
	return out
}

func (f *fixture) bids(itemID uint64) []model.Bid {
	f.t.Helper()
	out, err := f.eng.BidHistory(f.ctx, itemID)
	require.NoError(f.t, err)
	return out
}

// pending returns the single pending contract of winner.
func (f *fixture) pending(winner uint64) model.PendingContract {
	f.t.Helper()
	list, err := f.eng.PendingContracts(f.ctx, winner)
	require.NoError(f.t, err)
	require.Len(f.t, list, 1)
	return list[0]
}

func (f *fixture) contract(id uint64) *model.PendingContract {
	f.t.Helper()
	var out *model.PendingContract
	f.read(func(tx repository.Tx) {
		var err error
		out, err = tx.GetContract(f.ctx, id)
		require.NoError(f.t, err)
	})
	return out
}

// awarded runs a lot through one winning bid and the award.
func (f *fixture) awarded(name string, winner uint64, amount string) model.PendingContract {
	f.t.Helper()
	id := f.lot(name, false)
	require.True(f.t, f.bid(id, winner, amount, t0).OK)
	res, err := f.eng.AwardPlayer(f.ctx, id, t0.Add(24*time.Hour))
	require.NoError(f.t, err)
	require.True(f.t, res.OK, res.Message)
	return f.pending(winner)
}
