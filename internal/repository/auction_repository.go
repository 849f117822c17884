package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/fantasy-auction/internal/model"
)

const auctionColumns = `id, name, start_time, end_time, created_by_commissioner_id, status, auction_type, description`

func scanAuction(row interface{ Scan(...any) error }) (*model.Auction, error) {
	var a model.Auction
	if err := row.Scan(&a.ID, &a.Name, &a.StartTime, &a.EndTime, &a.CommissionerID, &a.Status, &a.Type, &a.Description); err != nil {
		return nil, err
	}
	return &a, nil
}

func (t *sqlTx) GetAuction(ctx context.Context, id uint64) (*model.Auction, error) {
	a, err := scanAuction(t.tx.QueryRowContext(ctx, `SELECT `+auctionColumns+` FROM auctions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (t *sqlTx) ListAuctionsByStatus(ctx context.Context, status model.AuctionStatus) ([]model.Auction, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT `+auctionColumns+` FROM auctions WHERE status = ? ORDER BY id`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Auction, 0)
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (t *sqlTx) CreateAuction(ctx context.Context, a *model.Auction) error {
	const q = `INSERT INTO auctions (name, start_time, end_time, created_by_commissioner_id, status, auction_type, description)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q, a.Name, a.StartTime, a.EndTime, a.CommissionerID, a.Status, a.Type, a.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

func (t *sqlTx) UpdateAuction(ctx context.Context, a *model.Auction) error {
	const q = `UPDATE auctions SET name = ?, start_time = ?, end_time = ?, status = ?, auction_type = ?, description = ?
	           WHERE id = ?`
	res, err := t.tx.ExecContext(ctx, q, a.Name, a.StartTime, a.EndTime, a.Status, a.Type, a.Description, a.ID)
	return affectedOne(res, err)
}
