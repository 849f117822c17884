package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/fantasy-auction/internal/auction"
	"github.com/iliyamo/fantasy-auction/internal/model"
)

// Response shapes.  Amounts are cap-units encoded as decimal strings.

type auctionView struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"auction_type"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

type itemView struct {
	ID              uint64           `json:"id"`
	PlayerID        uint64           `json:"player_id"`
	PlayerName      string           `json:"player_name,omitempty"`
	Position        string           `json:"position,omitempty"`
	Team            string           `json:"team,omitempty"`
	IsMinorLeaguer  bool             `json:"is_minor_leaguer"`
	Status          string           `json:"status"`
	StartingBid     decimal.Decimal  `json:"starting_bid"`
	CurrentBid      *decimal.Decimal `json:"current_bid"`
	CurrentBidderID *uint64          `json:"current_bidder_id"`
	MinimumNextBid  decimal.Decimal  `json:"minimum_next_bid"`
	HoursRemaining  int              `json:"hours_remaining"`
	AddedTime       time.Time        `json:"added_time"`
	LastBidTime     *time.Time       `json:"last_bid_time"`
	EndTime         *time.Time       `json:"end_time"`
}

type bidView struct {
	ID       uint64          `json:"id"`
	ItemID   uint64          `json:"auction_item_id"`
	BidderID uint64          `json:"bidder_id"`
	Amount   decimal.Decimal `json:"amount"`
	BidTime  time.Time       `json:"bid_time"`
	Status   string          `json:"status"`
}

type contractView struct {
	ID               uint64          `json:"id"`
	ItemID           uint64          `json:"auction_item_id"`
	PlayerID         uint64          `json:"player_id"`
	WinningBid       decimal.Decimal `json:"winning_bid"`
	BuyoutFee        decimal.Decimal `json:"buyout_fee"`
	WonTime          time.Time       `json:"won_time"`
	ContractDeadline time.Time       `json:"contract_deadline"`
	Status           string          `json:"status"`
	IsMinorLeaguer   bool            `json:"is_minor_leaguer"`
}

type releaseView struct {
	ID                     uint64          `json:"id"`
	PlayerID               uint64          `json:"player_id"`
	PlayerName             string          `json:"player_name"`
	Position               string          `json:"position"`
	Team                   string          `json:"team"`
	PreviousContractLength int             `json:"previous_contract_length"`
	PreviousContractAmount decimal.Decimal `json:"previous_contract_amount"`
	PreviousOwnerID        *uint64         `json:"previous_owner_id"`
	ReleasedAt             time.Time       `json:"released_at"`
	Status                 string          `json:"status"`
}

func newAuctionView(a model.Auction) auctionView {
	return auctionView{
		ID:          a.ID,
		Name:        a.Name,
		Type:        string(a.Type),
		Status:      string(a.Status),
		Description: a.Description,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
	}
}

func newItemView(bi auction.BoardItem) itemView {
	it := bi.Item
	v := itemView{
		ID:              it.ID,
		PlayerID:        it.PlayerID,
		IsMinorLeaguer:  it.IsMinorLeaguer,
		Status:          string(it.Status),
		StartingBid:     it.StartingBid,
		CurrentBid:      it.CurrentBid,
		CurrentBidderID: it.CurrentBidderID,
		MinimumNextBid:  bi.MinimumNextBid,
		HoursRemaining:  bi.HoursRemaining,
		AddedTime:       it.AddedTime,
		LastBidTime:     it.LastBidTime,
		EndTime:         it.EndTime,
	}
	if bi.Player != nil {
		v.PlayerName, v.Position, v.Team = bi.Player.Name, bi.Player.Position, bi.Player.Team
	}
	return v
}

func newBidView(b model.Bid) bidView {
	return bidView{
		ID:       b.ID,
		ItemID:   b.AuctionItemID,
		BidderID: b.BidderID,
		Amount:   b.Amount,
		BidTime:  b.BidTime,
		Status:   string(b.Status),
	}
}

func newContractView(pc model.PendingContract) contractView {
	return contractView{
		ID:               pc.ID,
		ItemID:           pc.AuctionItemID,
		PlayerID:         pc.PlayerID,
		WinningBid:       pc.WinningBid,
		BuyoutFee:        pc.BuyoutFee,
		WonTime:          pc.WonTime,
		ContractDeadline: pc.ContractDeadline,
		Status:           string(pc.Status),
		IsMinorLeaguer:   pc.IsMinorLeaguer,
	}
}

func bidViews(bids []model.Bid) []bidView {
	out := make([]bidView, 0, len(bids))
	for _, b := range bids {
		out = append(out, newBidView(b))
	}
	return out
}

func newReleaseView(r model.ReleasedPlayer) releaseView {
	return releaseView{
		ID:                     r.ID,
		PlayerID:               r.PlayerID,
		PlayerName:             r.PlayerName,
		Position:               r.Position,
		Team:                   r.Team,
		PreviousContractLength: r.PreviousContractLength,
		PreviousContractAmount: r.PreviousContractAmount,
		PreviousOwnerID:        r.PreviousOwnerID,
		ReleasedAt:             r.ReleasedAt,
		Status:                 string(r.Status),
	}
}
