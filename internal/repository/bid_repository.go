package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/fantasy-auction/internal/model"
)

const bidColumns = `id, auction_item_id, bidder_id, amount, bid_time, status`

func scanBids(rows *sql.Rows) ([]model.Bid, error) {
	defer rows.Close()
	out := make([]model.Bid, 0)
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.AuctionItemID, &b.BidderID, &b.Amount, &b.BidTime, &b.Status); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (t *sqlTx) CreateBid(ctx context.Context, b *model.Bid) error {
	const q = `INSERT INTO bids (auction_item_id, bidder_id, amount, bid_time, status) VALUES (?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q, b.AuctionItemID, b.BidderID, b.Amount, b.BidTime, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

func (t *sqlTx) UpdateBidStatus(ctx context.Context, id uint64, status model.BidStatus) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE bids SET status = ? WHERE id = ?`, status, id)
	return affectedOne(res, err)
}

func (t *sqlTx) ListBidsByAmountDesc(ctx context.Context, itemID uint64) ([]model.Bid, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE auction_item_id = ? ORDER BY amount DESC, id ASC`, itemID)
	if err != nil {
		return nil, err
	}
	return scanBids(rows)
}

func (t *sqlTx) HighestBid(ctx context.Context, itemID uint64) (*model.Bid, error) {
	var b model.Bid
	err := t.tx.QueryRowContext(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE auction_item_id = ? ORDER BY amount DESC, id ASC LIMIT 1`, itemID).
		Scan(&b.ID, &b.AuctionItemID, &b.BidderID, &b.Amount, &b.BidTime, &b.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (t *sqlTx) ListBidsByBidder(ctx context.Context, bidderID uint64) ([]model.Bid, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE bidder_id = ? ORDER BY bid_time DESC, id DESC`, bidderID)
	if err != nil {
		return nil, err
	}
	return scanBids(rows)
}
