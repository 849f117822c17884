package auction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fantasy-auction/internal/lock"
	"github.com/iliyamo/fantasy-auction/internal/model"
	"github.com/iliyamo/fantasy-auction/internal/repository"
)

func TestCurrentAuctionProvider(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	p := NewCurrentAuctionProvider(store, lock.NewLocal())

	_, err := p.Current(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	a, err := p.GetOrCreate(ctx, 7, t0)
	require.NoError(t, err)
	assert.Equal(t, model.InSeason, a.Type)
	assert.Equal(t, model.AuctionActive, a.Status)
	assert.True(t, a.EndTime.Equal(t0.AddDate(1, 0, 0)))

	again, err := p.GetOrCreate(ctx, 7, t0)
	require.NoError(t, err)
	assert.Equal(t, a.ID, again.ID)

	res, err := p.ToggleType(ctx, 7, t0)
	require.NoError(t, err)
	assert.Equal(t, "Auction type changed to Off-Season Free Agency", res.Message)
	cur, err := p.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.OffSeason, cur.Type)

	res, err = p.ToggleType(ctx, 7, t0)
	require.NoError(t, err)
	assert.Equal(t, "Auction type changed to In-Season Free Agency", res.Message)
}

func TestToggleType_ChangesStandTimeOfRunningLots(t *testing.T) {
	f := newFixture(t, model.InSeason)
	id := f.lot("Bram", false)
	require.True(t, f.bid(id, f.owner("a"), "1", t0).OK)

	p := NewCurrentAuctionProvider(f.store, f.locks)
	_, err := p.ToggleType(f.ctx, f.commish, t0)
	require.NoError(t, err)

	res, err := f.eng.AwardPlayer(f.ctx, id, t0.Add(25*time.Hour))
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "47 hours remaining")
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, Event) error { return errors.New("broker down") }

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t, model.InSeason)
	id := f.lot("Vega", false)
	eng := New(f.store, f.locks, WithEvents(failingPublisher{}))

	res, err := eng.PlaceBid(f.ctx, id, f.owner("a"), dec("0.5"), t0)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Len(t, f.bids(id), 1)
}
