package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/fantasy-auction/internal/model"
)

// MemoryStore keeps every entity in process.  Each InTx call works on a
// private copy of the state and swaps it in only when fn succeeds, so a
// failed unit of work leaves nothing behind.  Transactions are fully
// serialised.  It backs STORE_DRIVER=memory and the engine tests.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	nextID    uint64
	auctions  map[uint64]model.Auction
	items     map[uint64]model.AuctionItem
	bids      map[uint64]model.Bid
	contracts map[uint64]model.PendingContract
	accounts  map[uint64]model.UserAccount
	players   map[uint64]model.Player
	releases  map[uint64]model.ReleasedPlayer
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{
		auctions:  map[uint64]model.Auction{},
		items:     map[uint64]model.AuctionItem{},
		bids:      map[uint64]model.Bid{},
		contracts: map[uint64]model.PendingContract{},
		accounts:  map[uint64]model.UserAccount{},
		players:   map[uint64]model.Player{},
		releases:  map[uint64]model.ReleasedPlayer{},
	}}
}

// InTx implements Store.
func (s *MemoryStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(&memTx{st: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// SeedAccount inserts or replaces an account.  A zero ID is assigned.
func (s *MemoryStore) SeedAccount(u model.UserAccount) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.state.id()
	}
	if u.SalaryCap.IsZero() {
		u.SalaryCap = model.DefaultSalaryCap
	}
	s.state.accounts[u.ID] = u
	return u.ID
}

// SeedPlayer inserts or replaces a player.  A zero ID is assigned.
func (s *MemoryStore) SeedPlayer(p model.Player) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.state.id()
	}
	s.state.players[p.ID] = clonePlayer(p)
	return p.ID
}

func (st *memState) id() uint64 {
	st.nextID++
	return st.nextID
}

func (st *memState) clone() *memState {
	c := &memState{
		nextID:    st.nextID,
		auctions:  make(map[uint64]model.Auction, len(st.auctions)),
		items:     make(map[uint64]model.AuctionItem, len(st.items)),
		bids:      make(map[uint64]model.Bid, len(st.bids)),
		contracts: make(map[uint64]model.PendingContract, len(st.contracts)),
		accounts:  make(map[uint64]model.UserAccount, len(st.accounts)),
		players:   make(map[uint64]model.Player, len(st.players)),
		releases:  make(map[uint64]model.ReleasedPlayer, len(st.releases)),
	}
	for k, v := range st.auctions {
		c.auctions[k] = v
	}
	for k, v := range st.items {
		c.items[k] = cloneItem(v)
	}
	for k, v := range st.bids {
		c.bids[k] = v
	}
	for k, v := range st.contracts {
		c.contracts[k] = cloneContract(v)
	}
	for k, v := range st.accounts {
		c.accounts[k] = v
	}
	for k, v := range st.players {
		c.players[k] = clonePlayer(v)
	}
	for k, v := range st.releases {
		c.releases[k] = cloneRelease(v)
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneItem(i model.AuctionItem) model.AuctionItem {
	i.CurrentBid = clonePtr(i.CurrentBid)
	i.CurrentBidderID = clonePtr(i.CurrentBidderID)
	i.FirstBidTime = clonePtr(i.FirstBidTime)
	i.LastBidTime = clonePtr(i.LastBidTime)
	i.EndTime = clonePtr(i.EndTime)
	i.ContractDeadline = clonePtr(i.ContractDeadline)
	i.RosterComplianceDeadline = clonePtr(i.RosterComplianceDeadline)
	return i
}

func cloneContract(c model.PendingContract) model.PendingContract {
	c.ContractYears = clonePtr(c.ContractYears)
	return c
}

func clonePlayer(p model.Player) model.Player {
	p.OwnerID = clonePtr(p.OwnerID)
	return p
}

func cloneRelease(r model.ReleasedPlayer) model.ReleasedPlayer {
	r.PreviousOwnerID = clonePtr(r.PreviousOwnerID)
	return r
}

// memTx is the Tx view over a private memState copy.
type memTx struct {
	st *memState
}

func (t *memTx) GetAuction(_ context.Context, id uint64) (*model.Auction, error) {
	a, ok := t.st.auctions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (t *memTx) ListAuctionsByStatus(_ context.Context, status model.AuctionStatus) ([]model.Auction, error) {
	out := make([]model.Auction, 0)
	for _, a := range t.st.auctions {
		if a.Status == status {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) CreateAuction(_ context.Context, a *model.Auction) error {
	a.ID = t.st.id()
	t.st.auctions[a.ID] = *a
	return nil
}

func (t *memTx) UpdateAuction(_ context.Context, a *model.Auction) error {
	if _, ok := t.st.auctions[a.ID]; !ok {
		return ErrNotFound
	}
	t.st.auctions[a.ID] = *a
	return nil
}

func (t *memTx) GetItem(_ context.Context, id uint64) (*model.AuctionItem, error) {
	i, ok := t.st.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := cloneItem(i)
	return &c, nil
}

func (t *memTx) ListItems(_ context.Context, auctionID uint64, status model.ItemStatus) ([]model.AuctionItem, error) {
	out := make([]model.AuctionItem, 0)
	for _, i := range t.st.items {
		if i.AuctionID == auctionID && i.Status == status {
			out = append(out, cloneItem(i))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (t *memTx) FindItemByPlayer(_ context.Context, playerID uint64, status model.ItemStatus) (*model.AuctionItem, error) {
	var found *model.AuctionItem
	for _, i := range t.st.items {
		if i.PlayerID == playerID && i.Status == status && (found == nil || i.ID < found.ID) {
			c := cloneItem(i)
			found = &c
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (t *memTx) CreateItem(_ context.Context, item *model.AuctionItem) error {
	item.ID = t.st.id()
	item.Version = 0
	t.st.items[item.ID] = cloneItem(*item)
	return nil
}

func (t *memTx) UpdateItem(_ context.Context, item *model.AuctionItem) error {
	cur, ok := t.st.items[item.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != item.Version {
		return ErrConflict
	}
	item.Version++
	t.st.items[item.ID] = cloneItem(*item)
	return nil
}

func (t *memTx) CreateBid(_ context.Context, b *model.Bid) error {
	b.ID = t.st.id()
	t.st.bids[b.ID] = *b
	return nil
}

func (t *memTx) UpdateBidStatus(_ context.Context, id uint64, status model.BidStatus) error {
	b, ok := t.st.bids[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	t.st.bids[id] = b
	return nil
}

func (t *memTx) ListBidsByAmountDesc(_ context.Context, itemID uint64) ([]model.Bid, error) {
	out := make([]model.Bid, 0)
	for _, b := range t.st.bids {
		if b.AuctionItemID == itemID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *memTx) HighestBid(ctx context.Context, itemID uint64) (*model.Bid, error) {
	bids, _ := t.ListBidsByAmountDesc(ctx, itemID)
	if len(bids) == 0 {
		return nil, ErrNotFound
	}
	return &bids[0], nil
}

func (t *memTx) ListBidsByBidder(_ context.Context, bidderID uint64) ([]model.Bid, error) {
	out := make([]model.Bid, 0)
	for _, b := range t.st.bids {
		if b.BidderID == bidderID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BidTime.Equal(out[j].BidTime) {
			return out[i].BidTime.After(out[j].BidTime)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (t *memTx) GetContract(_ context.Context, id uint64) (*model.PendingContract, error) {
	c, ok := t.st.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cc := cloneContract(c)
	return &cc, nil
}

func (t *memTx) CreateContract(_ context.Context, c *model.PendingContract) error {
	c.ID = t.st.id()
	t.st.contracts[c.ID] = cloneContract(*c)
	return nil
}

func (t *memTx) UpdateContract(_ context.Context, c *model.PendingContract) error {
	if _, ok := t.st.contracts[c.ID]; !ok {
		return ErrNotFound
	}
	t.st.contracts[c.ID] = cloneContract(*c)
	return nil
}

func (t *memTx) ListExpiredContracts(_ context.Context, now time.Time) ([]model.PendingContract, error) {
	out := make([]model.PendingContract, 0)
	for _, c := range t.st.contracts {
		if c.Status == model.ContractPending && c.ContractDeadline.Before(now) {
			out = append(out, cloneContract(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) ListContractsByWinner(_ context.Context, winnerID uint64, status model.ContractStatus) ([]model.PendingContract, error) {
	out := make([]model.PendingContract, 0)
	for _, c := range t.st.contracts {
		if c.WinnerID == winnerID && c.Status == status {
			out = append(out, cloneContract(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) GetAccount(_ context.Context, id uint64) (*model.UserAccount, error) {
	u, ok := t.st.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (t *memTx) UpdateAccount(_ context.Context, u *model.UserAccount) error {
	if _, ok := t.st.accounts[u.ID]; !ok {
		return ErrNotFound
	}
	t.st.accounts[u.ID] = *u
	return nil
}

func (t *memTx) GetPlayer(_ context.Context, id uint64) (*model.Player, error) {
	p, ok := t.st.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := clonePlayer(p)
	return &c, nil
}

func (t *memTx) UpdatePlayer(_ context.Context, p *model.Player) error {
	if _, ok := t.st.players[p.ID]; !ok {
		return ErrNotFound
	}
	t.st.players[p.ID] = clonePlayer(*p)
	return nil
}

func (t *memTx) GetRelease(_ context.Context, id uint64) (*model.ReleasedPlayer, error) {
	r, ok := t.st.releases[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := cloneRelease(r)
	return &c, nil
}

func (t *memTx) CreateRelease(_ context.Context, r *model.ReleasedPlayer) error {
	r.ID = t.st.id()
	t.st.releases[r.ID] = cloneRelease(*r)
	return nil
}

func (t *memTx) UpdateRelease(_ context.Context, r *model.ReleasedPlayer) error {
	if _, ok := t.st.releases[r.ID]; !ok {
		return ErrNotFound
	}
	t.st.releases[r.ID] = cloneRelease(*r)
	return nil
}

func (t *memTx) ListReleases(_ context.Context, status model.ReleaseStatus) ([]model.ReleasedPlayer, error) {
	out := make([]model.ReleasedPlayer, 0)
	for _, r := range t.st.releases {
		if r.Status == status {
			out = append(out, cloneRelease(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReleasedAt.Equal(out[j].ReleasedAt) {
			return out[i].ReleasedAt.After(out[j].ReleasedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
