package auction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fantasy-auction/internal/model"
)

// signed runs a player through award and a two year contract for winner.
func (f *fixture) signed(name string, winner uint64, amount string) model.PendingContract {
	f.t.Helper()
	c := f.awarded(name, winner, amount)
	res, err := f.eng.PostContract(f.ctx, c.ID, winner, 2, t0.Add(25*time.Hour))
	require.NoError(f.t, err)
	require.True(f.t, res.OK, res.Message)
	return c
}

func TestReleasePlayers_QueuesAndFreesPlayer(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice := f.owner("alice")
	c := f.signed("Judge", alice, "3")
	require.Equal(t, 1, f.account(alice).MajorLeagueRosterCount)
	at := t0.Add(48 * time.Hour)

	res, err := f.eng.ReleasePlayers(f.ctx, alice, false, []uint64{c.PlayerID, c.PlayerID}, at)
	require.NoError(t, err)
	require.True(t, res.OK, res.Message)
	assert.Equal(t, "Successfully released 1 player(s). They are waiting in the auction queue.", res.Message)
	require.Len(t, res.Released, 1)

	entry := res.Released[0]
	assert.Equal(t, model.ReleasePending, entry.Status)
	assert.Equal(t, "Judge", entry.PlayerName)
	assert.Equal(t, 2, entry.PreviousContractLength)
	assert.True(t, entry.PreviousContractAmount.Equal(dec("6")))
	require.NotNil(t, entry.PreviousOwnerID)
	assert.Equal(t, alice, *entry.PreviousOwnerID)
	assert.True(t, entry.ReleasedAt.Equal(at))

	p := f.playerRow(c.PlayerID)
	assert.Nil(t, p.OwnerID)
	assert.Zero(t, p.ContractLength)
	assert.True(t, p.ContractAmount.IsZero())

	acct := f.account(alice)
	assert.Equal(t, 0, acct.MajorLeagueRosterCount)
	assert.True(t, acct.CurrentSalaryUsed.Equal(dec("3")))
	assert.Contains(t, f.events.types(), EventPlayerReleased)

	queue, err := f.eng.ReleaseQueue(f.ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, entry.ID, queue[0].ID)
}

func TestReleasePlayers_Failures(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice, bob := f.owner("alice"), f.owner("bob")
	mine := f.signed("Mine", alice, "2")
	theirs := f.signed("Theirs", bob, "2")

	res, err := f.eng.ReleasePlayers(f.ctx, alice, false, nil, t0)
	require.NoError(t, err)
	assert.Equal(t, "No players selected for release.", res.Message)

	// one foreign player fails the whole batch
	res, err = f.eng.ReleasePlayers(f.ctx, alice, false, []uint64{mine.PlayerID, theirs.PlayerID}, t0)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "You can only release your own players.", res.Message)
	require.NotNil(t, f.playerRow(mine.PlayerID).OwnerID)

	free := f.player("Free", false)
	res, err = f.eng.ReleasePlayers(f.ctx, alice, false, []uint64{free}, t0)
	require.NoError(t, err)
	assert.Equal(t, "Player Free is not on a roster", res.Message)

	res, err = f.eng.ReleasePlayers(f.ctx, alice, false, []uint64{9999}, t0)
	require.NoError(t, err)
	assert.Equal(t, "Player not found", res.Message)

	queue, err := f.eng.ReleaseQueue(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)

	// commissioners may release for any team
	res, err = f.eng.ReleasePlayers(f.ctx, f.commish, true, []uint64{mine.PlayerID, theirs.PlayerID}, t0)
	require.NoError(t, err)
	require.True(t, res.OK, res.Message)
	assert.Len(t, res.Released, 2)
	assert.Equal(t, 0, f.account(bob).MajorLeagueRosterCount)
}

func TestAddReleasedPlayer(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice := f.owner("alice")
	c := f.signed("Ohtani", alice, "4")
	rel, err := f.eng.ReleasePlayers(f.ctx, alice, false, []uint64{c.PlayerID}, t0.Add(30*time.Hour))
	require.NoError(t, err)
	entryID := rel.Released[0].ID

	at := t0.Add(31 * time.Hour)
	res, err := f.eng.AddReleasedPlayer(f.ctx, f.auctionID, entryID, f.commish, dec("1"), at)
	require.NoError(t, err)
	require.True(t, res.OK, res.Message)
	assert.Equal(t, c.PlayerID, res.Item.PlayerID)
	assert.True(t, res.Item.StartingBid.Equal(dec("1")))
	assert.Equal(t, model.ItemActive, f.item(res.Item.ID).Status)

	queue, err := f.eng.ReleaseQueue(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)

	res, err = f.eng.AddReleasedPlayer(f.ctx, f.auctionID, entryID, f.commish, dec("1"), at)
	require.NoError(t, err)
	assert.Equal(t, "Released player already processed (status: ADDED_TO_AUCTION)", res.Message)

	res, err = f.eng.AddReleasedPlayer(f.ctx, f.auctionID, 9999, f.commish, dec("1"), at)
	require.NoError(t, err)
	assert.Equal(t, "Released player not found", res.Message)
}

func TestAddReleasedPlayer_FailedNominationKeepsEntryPending(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice := f.owner("alice")
	c := f.signed("Betts", alice, "2")
	rel, err := f.eng.ReleasePlayers(f.ctx, alice, false, []uint64{c.PlayerID}, t0.Add(30*time.Hour))
	require.NoError(t, err)

	// nominated directly before the queue was worked
	direct, err := f.eng.NominatePlayer(f.ctx, f.auctionID, c.PlayerID, f.commish, decimal.Zero, t0.Add(31*time.Hour))
	require.NoError(t, err)
	require.True(t, direct.OK)

	res, err := f.eng.AddReleasedPlayer(f.ctx, f.auctionID, rel.Released[0].ID, f.commish, dec("1"), t0.Add(32*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "Player is already in auction", res.Message)

	queue, err := f.eng.ReleaseQueue(f.ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, model.ReleasePending, queue[0].Status)
}

func TestRejectReleasedPlayer(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice := f.owner("alice")
	c := f.signed("Trout", alice, "2")
	rel, err := f.eng.ReleasePlayers(f.ctx, alice, false, []uint64{c.PlayerID}, t0.Add(30*time.Hour))
	require.NoError(t, err)
	entryID := rel.Released[0].ID

	res, err := f.eng.RejectReleasedPlayer(f.ctx, entryID, t0.Add(31*time.Hour))
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, "Player Trout rejected from auction queue", res.Message)
	assert.Nil(t, f.playerRow(c.PlayerID).OwnerID)
	assert.Contains(t, f.events.types(), EventReleaseRejected)

	res, err = f.eng.RejectReleasedPlayer(f.ctx, entryID, t0.Add(31*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "Released player already processed (status: REJECTED)", res.Message)

	added, err := f.eng.AddReleasedPlayer(f.ctx, f.auctionID, entryID, f.commish, dec("1"), t0.Add(32*time.Hour))
	require.NoError(t, err)
	assert.False(t, added.OK)
	assert.Nil(t, added.Item)

	res, err = f.eng.RejectReleasedPlayer(f.ctx, 9999, t0)
	require.NoError(t, err)
	assert.Equal(t, "Released player not found", res.Message)
}
