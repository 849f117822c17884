package auction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fantasy-auction/internal/lock"
	"github.com/iliyamo/fantasy-auction/internal/model"
)

func TestPlaceBid_FirstBidScenarioA(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice := f.owner("alice")
	id := f.lot("Jones", false)
	assert.True(t, f.item(id).StartingBid.Equal(dec("0.5")))

	res := f.bid(id, alice, "0.5", t0)
	require.True(t, res.OK, res.Message)
	assert.Contains(t, res.Message, "Bid placed successfully for Jones - $0.5M")
	assert.Equal(t, model.BidWinning, res.Bid.Status)

	item := f.item(id)
	assert.Equal(t, model.ItemActive, item.Status)
	require.NotNil(t, item.FirstBidTime)
	assert.True(t, item.FirstBidTime.Equal(t0))
	assert.True(t, item.LastBidTime.Equal(t0))
	assert.True(t, item.EndTime.Equal(t0.Add(24*time.Hour)))
	assert.False(t, item.CanDeleteBid)
	assert.Equal(t, alice, *item.CurrentBidderID)
	assert.True(t, MinimumNextBid(item).Equal(dec("1.5")))
	assert.True(t, item.CurrentMinimumIncrement.Equal(MajorLeagueIncrement))

	// bidding never touches the cap
	assert.True(t, f.account(alice).CurrentSalaryUsed.IsZero())
	assert.Equal(t, []EventType{EventPlayerNominated, EventBidPlaced}, f.events.types())
}

func TestPlaceBid_EveryBidResetsStandTime(t *testing.T) {
	f := newFixture(t, model.OffSeason)
	alice, bob := f.owner("alice"), f.owner("bob")
	id := f.lot("Smith", false)

	require.True(t, f.bid(id, alice, "0.5", t0).OK)
	later := t0.Add(5 * time.Hour)
	require.True(t, f.bid(id, bob, "1.5", later).OK)

	item := f.item(id)
	assert.True(t, item.FirstBidTime.Equal(t0))
	assert.True(t, item.LastBidTime.Equal(later))
	assert.True(t, item.EndTime.Equal(later.Add(72*time.Hour)))
	assert.Equal(t, bob, *item.CurrentBidderID)
}

func TestPlaceBid_ExactlyOneWinningBid(t *testing.T) {
	f := newFixture(t, model.InSeason)
	a, b := f.owner("a"), f.owner("b")
	id := f.lot("Lee", true)
	for i, amt := range []string{"0.1", "0.2", "0.3", "0.5"} {
		bidder := a
		if i%2 == 1 {
			bidder = b
		}
		require.True(t, f.bid(id, bidder, amt, t0.Add(time.Duration(i)*time.Minute)).OK)
	}
	bids := f.bids(id)
	require.Len(t, bids, 4)
	assert.Equal(t, model.BidWinning, bids[0].Status)
	assert.True(t, bids[0].Amount.Equal(dec("0.5")))
	for _, bd := range bids[1:] {
		assert.Equal(t, model.BidOutbid, bd.Status)
	}
}

func TestPlaceBid_RejectionLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice := f.owner("alice")
	rich := f.store.SeedAccount(model.UserAccount{Username: "rich", CurrentSalaryUsed: dec("99.6")})
	id := f.lot("Cruz", false)
	require.True(t, f.bid(id, alice, "0.5", t0).OK)
	before := f.item(id)

	res := f.bid(id, alice, "1.4", t0.Add(time.Hour))
	assert.False(t, res.OK)
	assert.Nil(t, res.Bid)

	res = f.bid(id, rich, "1.5", t0.Add(time.Hour))
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "salary cap")

	assert.Equal(t, before, f.item(id))
	assert.Len(t, f.bids(id), 1)
	assert.True(t, f.account(rich).CurrentSalaryUsed.Equal(dec("99.6")))
}

func TestPlaceBid_UnknownEntities(t *testing.T) {
	f := newFixture(t, model.InSeason)
	res := f.bid(999, f.owner("a"), "1", t0)
	assert.Equal(t, "Auction item not found", res.Message)

	id := f.lot("Diaz", false)
	res = f.bid(id, 12345, "1", t0)
	assert.Equal(t, "User not found", res.Message)
}

func TestPlaceBid_ConcurrentBidsOnOneLot(t *testing.T) {
	f := newFixture(t, model.InSeason)
	id := f.lot("Ortiz", false)
	const n = 12
	bidders := make([]uint64, n)
	for i := range bidders {
		bidders[i] = f.owner(string(rune('a' + i)))
	}

	var wg sync.WaitGroup
	results := make([]BidResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.eng.PlaceBid(context.Background(), id, bidders[i], dec("0.5"), t0)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, r := range results {
		if r.OK {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
	bids := f.bids(id)
	require.Len(t, bids, 1)
	assert.Equal(t, model.BidWinning, bids[0].Status)
}

func TestAwardPlayer_ScenarioB(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice := f.owner("alice")
	id := f.lot("Perez", false)
	require.True(t, f.bid(id, alice, "0.5", t0).OK)
	require.True(t, f.bid(id, alice, "2.5", t0.Add(time.Hour)).OK)
	last := t0.Add(time.Hour)

	rep, err := f.eng.AutoAwardExpiredAuctions(f.ctx, last.Add(23*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Processed)
	assert.Equal(t, model.ItemActive, f.item(id).Status)

	now := last.Add(24*time.Hour + time.Minute)
	rep, err = f.eng.AutoAwardExpiredAuctions(f.ctx, now)
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Candidates: 1, Processed: 1}, rep)

	item := f.item(id)
	assert.Equal(t, model.ItemAwaitingContract, item.Status)
	assert.True(t, item.ContractDeadline.Equal(now.Add(48*time.Hour)))
	assert.True(t, item.RosterComplianceDeadline.Equal(now.Add(24*time.Hour)))

	c := f.pending(alice)
	assert.True(t, c.WinningBid.Equal(dec("2.5")))
	assert.True(t, c.BuyoutFee.Equal(dec("1.25")))
	assert.True(t, c.ContractDeadline.Equal(now.Add(48*time.Hour)))
	assert.Nil(t, c.ContractYears)

	// a second pass finds nothing to do
	rep, err = f.eng.AutoAwardExpiredAuctions(f.ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Candidates)
}

func TestAwardPlayer_FailuresLeaveLotUntouched(t *testing.T) {
	f := newFixture(t, model.OffSeason)
	alice := f.owner("alice")
	id := f.lot("Kim", false)

	res, err := f.eng.AwardPlayer(f.ctx, id, t0.Add(100*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "No bids placed on this item", res.Message)

	require.True(t, f.bid(id, alice, "1", t0).OK)
	before := f.item(id)
	res, err = f.eng.AwardPlayer(f.ctx, id, t0.Add(70*time.Hour))
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "Player cannot be awarded yet. 2 hours remaining since last bid.", res.Message)
	assert.Equal(t, before, f.item(id))

	res, err = f.eng.AwardPlayer(f.ctx, id, t0.Add(72*time.Hour))
	require.NoError(t, err)
	assert.True(t, res.OK, res.Message)
	assert.Contains(t, res.Message, "awarded to alice for $1M AAS")

	res, err = f.eng.AwardPlayer(f.ctx, id, t0.Add(73*time.Hour))
	require.NoError(t, err)
	assert.False(t, res.OK)
}

func TestPostContract_ScenarioC(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice := f.owner("alice")
	c := f.awarded("Bell", alice, "0.6")
	at := t0.Add(30 * time.Hour)

	res, err := f.eng.PostContract(f.ctx, c.ID, alice, 3, at)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "max 2-year contracts")
	assert.Equal(t, model.ContractPending, f.contract(c.ID).Status)

	res, err = f.eng.PostContract(f.ctx, c.ID, alice, 2, at)
	require.NoError(t, err)
	require.True(t, res.OK, res.Message)
	assert.Equal(t, "Contract posted for Bell: 2 years at $0.6M AAS (Total: $1.2M).", res.Message)

	p := f.playerRow(c.PlayerID)
	require.NotNil(t, p.OwnerID)
	assert.Equal(t, alice, *p.OwnerID)
	assert.Equal(t, 2, p.ContractLength)
	assert.True(t, p.ContractAmount.Equal(dec("1.2")))
	assert.True(t, p.AverageAnnualSalary.Equal(dec("0.6")))
	assert.Equal(t, 1, p.ContractYear)

	u := f.account(alice)
	assert.Equal(t, 1, u.MajorLeagueRosterCount)
	assert.Equal(t, 0, u.MinorLeagueRosterCount)
	assert.True(t, u.CurrentSalaryUsed.Equal(dec("0.6")))

	posted := f.contract(c.ID)
	assert.Equal(t, model.ContractPosted, posted.Status)
	require.NotNil(t, posted.ContractYears)
	assert.Equal(t, 2, *posted.ContractYears)
	assert.Equal(t, model.ItemSold, f.item(c.AuctionItemID).Status)
}

func TestPostContract_WrongUser(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice, bob := f.owner("alice"), f.owner("bob")
	c := f.awarded("Ruiz", alice, "1")
	res, err := f.eng.PostContract(f.ctx, c.ID, bob, 1, t0.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "You are not the winner of this auction", res.Message)

	res, err = f.eng.PostContract(f.ctx, 4242, alice, 1, t0)
	require.NoError(t, err)
	assert.Equal(t, "Pending contract not found", res.Message)
}

func TestPostContract_RosterWarning(t *testing.T) {
	f := newFixture(t, model.InSeason)
	full := f.store.SeedAccount(model.UserAccount{Username: "full", MajorLeagueRosterCount: 39})
	c := f.awarded("Gray", full, "1")
	// the roster filled up between the bid and the post
	acct := f.account(full)
	acct.MajorLeagueRosterCount = 40
	f.store.SeedAccount(*acct)

	res, err := f.eng.PostContract(f.ctx, c.ID, full, 1, t0.Add(25*time.Hour))
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Contains(t, res.Message, "WARNING: You now have 41 major league players (max 40). You have 24 hours")
}

func TestPostContract_AfterDeadlineChargesOnce(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice := f.owner("alice")
	c := f.awarded("Hale", alice, "3")
	late := c.ContractDeadline.Add(time.Minute)

	for i := 0; i < 2; i++ {
		res, err := f.eng.PostContract(f.ctx, c.ID, alice, 2, late)
		require.NoError(t, err)
		assert.False(t, res.OK)
	}
	assert.True(t, f.account(alice).CurrentSalaryUsed.Equal(dec("1.5")))
	assert.Equal(t, model.ContractExpired, f.contract(c.ID).Status)
	assert.Nil(t, f.playerRow(c.PlayerID).OwnerID)
	assert.Equal(t, 0, f.account(alice).MajorLeagueRosterCount)
}

func TestPostContract_AtDeadlineIsAccepted(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice := f.owner("alice")
	c := f.awarded("Neal", alice, "1")
	res, err := f.eng.PostContract(f.ctx, c.ID, alice, 1, c.ContractDeadline)
	require.NoError(t, err)
	assert.True(t, res.OK, res.Message)
}

func TestProcessExpiredContracts_ScenarioD(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice := f.owner("alice")
	c := f.awarded("Ford", alice, "0.6")

	rep, err := f.eng.ProcessExpiredContracts(f.ctx, c.ContractDeadline)
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Candidates)

	now := c.ContractDeadline.Add(time.Second)
	rep, err = f.eng.ProcessExpiredContracts(f.ctx, now)
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Candidates: 1, Processed: 1}, rep)

	assert.True(t, f.account(alice).CurrentSalaryUsed.Equal(dec("0.3")))
	assert.Equal(t, model.ContractExpired, f.contract(c.ID).Status)
	assert.Equal(t, model.ItemContractExpired, f.item(c.AuctionItemID).Status)
	assert.Nil(t, f.playerRow(c.PlayerID).OwnerID)

	rep, err = f.eng.ProcessExpiredContracts(f.ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Candidates)
	assert.True(t, f.account(alice).CurrentSalaryUsed.Equal(dec("0.3")))
	assert.Contains(t, f.events.types(), EventContractExpired)
}

func TestApplyBuyoutFee_Idempotent(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice := f.owner("alice")
	c := f.awarded("Moss", alice, "2")

	res, err := f.eng.ApplyBuyoutFee(f.ctx, c.ID, t0.Add(100*time.Hour))
	require.NoError(t, err)
	assert.True(t, res.OK)

	res, err = f.eng.ApplyBuyoutFee(f.ctx, c.ID, t0.Add(101*time.Hour))
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.True(t, f.account(alice).CurrentSalaryUsed.Equal(dec("1")))
}

func TestBuyoutPlayer(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice, bob := f.owner("alice"), f.owner("bob")
	c := f.awarded("Wade", alice, "4")
	at := t0.Add(26 * time.Hour)

	res, err := f.eng.BuyoutPlayer(f.ctx, c.ID, bob, at)
	require.NoError(t, err)
	assert.False(t, res.OK)

	res, err = f.eng.BuyoutPlayer(f.ctx, c.ID, alice, at)
	require.NoError(t, err)
	require.True(t, res.OK, res.Message)
	assert.Equal(t, "Wade bought out. Fee of $2M applied to your cap. Player returned to free agency.", res.Message)
	assert.Equal(t, model.ContractBoughtOut, f.contract(c.ID).Status)
	assert.Equal(t, model.ItemBoughtOut, f.item(c.AuctionItemID).Status)

	res, err = f.eng.BuyoutPlayer(f.ctx, c.ID, alice, at)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.True(t, f.account(alice).CurrentSalaryUsed.Equal(dec("2")))

	// the released player can be nominated again as a new lot
	res2, err := f.eng.NominatePlayer(f.ctx, f.auctionID, c.PlayerID, f.commish, decimal.Zero, at)
	require.NoError(t, err)
	assert.True(t, res2.OK, res2.Message)
}

func TestNominatePlayer(t *testing.T) {
	f := newFixture(t, model.InSeason)
	rookie := f.store.SeedPlayer(model.Player{Name: "Rook", IsRookie: true})

	res, err := f.eng.NominatePlayer(f.ctx, f.auctionID, rookie, f.commish, dec("0.05"), t0)
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.True(t, res.Item.IsMinorLeaguer)
	assert.True(t, res.Item.StartingBid.Equal(dec("0.1")))
	assert.True(t, res.Item.CanDeleteBid)
	assert.True(t, res.Item.AddedTime.Equal(t0))
	assert.Equal(t, "Player Rook added to auction with starting bid $0.1M", res.Message)

	res, err = f.eng.NominatePlayer(f.ctx, f.auctionID, rookie, f.commish, dec("1"), t0)
	require.NoError(t, err)
	assert.Equal(t, "Player is already in auction", res.Message)

	owner := f.owner("o")
	owned := f.store.SeedPlayer(model.Player{Name: "Taken", OwnerID: &owner})
	res, err = f.eng.NominatePlayer(f.ctx, f.auctionID, owned, f.commish, dec("1"), t0)
	require.NoError(t, err)
	assert.Equal(t, "Player is not a free agent", res.Message)

	res, err = f.eng.NominatePlayer(f.ctx, f.auctionID, 9999, f.commish, dec("1"), t0)
	require.NoError(t, err)
	assert.Equal(t, "Player not found", res.Message)

	odd := f.player("Odd", false)
	res, err = f.eng.NominatePlayer(f.ctx, f.auctionID, odd, f.commish, dec("0.555"), t0)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "Starting bids are limited to 2 decimal places", res.Message)

	vet := f.player("Vet", false)
	res, err = f.eng.NominatePlayer(f.ctx, f.auctionID, vet, f.commish, dec("3"), t0)
	require.NoError(t, err)
	assert.True(t, res.Item.StartingBid.Equal(dec("3")))
	assert.Equal(t, "Minimum starting bid for MLB players is $3M",
		f.bid(res.Item.ID, f.owner("x"), "2", t0).Message)
}

func TestNominatePlayer_AwaitingContractIsNotAFreeAgent(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice, bob := f.owner("alice"), f.owner("bob")
	c := f.awarded("Soto", alice, "1")

	res, err := f.eng.NominatePlayer(f.ctx, f.auctionID, c.PlayerID, f.commish, decimal.Zero, t0.Add(25*time.Hour))
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "Player has been won and is awaiting a contract", res.Message)
	assert.Nil(t, res.Item)

	list, err := f.eng.PendingContracts(f.ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	post, err := f.eng.PostContract(f.ctx, c.ID, alice, 2, t0.Add(25*time.Hour))
	require.NoError(t, err)
	require.True(t, post.OK, post.Message)
	require.NotNil(t, f.playerRow(c.PlayerID).OwnerID)
	assert.Equal(t, alice, *f.playerRow(c.PlayerID).OwnerID)
}

func TestRemoveItem(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice := f.owner("alice")

	quiet := f.lot("Quiet", false)
	res, err := f.eng.RemoveItem(f.ctx, quiet, t0)
	require.NoError(t, err)
	assert.Equal(t, "Player removed from auction (no bids)", res.Message)
	assert.Equal(t, model.ItemRemoved, f.item(quiet).Status)

	res, err = f.eng.RemoveItem(f.ctx, quiet, t0)
	require.NoError(t, err)
	assert.False(t, res.OK)

	busy := f.lot("Busy", false)
	require.True(t, f.bid(busy, alice, "1", t0).OK)
	res, err = f.eng.RemoveItem(f.ctx, busy, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, model.ItemActive, f.item(busy).Status)

	res, err = f.eng.RemoveItem(f.ctx, busy, t0.Add(25*time.Hour))
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, model.ItemAwaitingContract, f.item(busy).Status)
}

func TestSweeps_SkipLockedLots(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice := f.owner("alice")
	id := f.lot("Stone", false)
	require.True(t, f.bid(id, alice, "1", t0).OK)

	release, err := f.locks.TryAcquire(f.ctx, lock.ItemKey(id))
	require.NoError(t, err)
	rep, err := f.eng.AutoAwardExpiredAuctions(f.ctx, t0.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Candidates: 1, Skipped: 1}, rep)
	assert.Equal(t, model.ItemActive, f.item(id).Status)
	release()

	rep, err = f.eng.AutoAwardExpiredAuctions(f.ctx, t0.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Processed)
}

func TestSweeps_LotsWithoutBidsStayActive(t *testing.T) {
	f := newFixture(t, model.InSeason)
	id := f.lot("Idle", false)
	rep, err := f.eng.AutoAwardExpiredAuctions(f.ctx, t0.Add(1000*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Candidates)
	assert.Equal(t, model.ItemActive, f.item(id).Status)
}

func TestBoard(t *testing.T) {
	f := newFixture(t, model.InSeason)
	alice := f.owner("alice")
	a := f.lot("A", false)
	f.lot("B", true)
	require.True(t, f.bid(a, alice, "1", t0).OK)

	b, err := f.eng.Board(f.ctx, f.auctionID, t0.Add(90*time.Minute))
	require.NoError(t, err)
	require.Len(t, b.Items, 2)
	assert.Equal(t, "A", b.Items[0].Player.Name)
	assert.Equal(t, 23, b.Items[0].HoursRemaining)
	assert.True(t, b.Items[0].MinimumNextBid.Equal(dec("2")))
	assert.Equal(t, -1, b.Items[1].HoursRemaining)
	assert.True(t, b.Items[1].MinimumNextBid.Equal(dec("0.1")))

	mine, err := f.eng.BidsByBidder(f.ctx, alice)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
