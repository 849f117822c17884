package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/fantasy-auction/internal/model"
)

const itemColumns = `id, player_id, auction_id, starting_bid, current_bid, current_bidder_id, nominated_by_user_id,
	added_time, first_bid_time, last_bid_time, end_time, status, contract_deadline, roster_compliance_deadline,
	can_delete_bid, current_minimum_increment, is_minor_leaguer, version`

func scanItem(row interface{ Scan(...any) error }) (*model.AuctionItem, error) {
	var (
		i          model.AuctionItem
		currentBid decimal.NullDecimal
		bidder     sql.NullInt64
	)
	var firstBid, lastBid, end, cd, rcd sql.NullTime
	err := row.Scan(&i.ID, &i.PlayerID, &i.AuctionID, &i.StartingBid, &currentBid, &bidder, &i.NominatedByUserID,
		&i.AddedTime, &firstBid, &lastBid, &end, &i.Status, &cd, &rcd,
		&i.CanDeleteBid, &i.CurrentMinimumIncrement, &i.IsMinorLeaguer, &i.Version)
	if err != nil {
		return nil, err
	}
	if currentBid.Valid {
		v := currentBid.Decimal
		i.CurrentBid = &v
	}
	i.CurrentBidderID = uintPtr(bidder)
	i.FirstBidTime = timePtr(firstBid)
	i.LastBidTime = timePtr(lastBid)
	i.EndTime = timePtr(end)
	i.ContractDeadline = timePtr(cd)
	i.RosterComplianceDeadline = timePtr(rcd)
	return &i, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func (t *sqlTx) GetItem(ctx context.Context, id uint64) (*model.AuctionItem, error) {
	i, err := scanItem(t.tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM auction_items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return i, err
}

func (t *sqlTx) ListItems(ctx context.Context, auctionID uint64, status model.ItemStatus) ([]model.AuctionItem, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM auction_items WHERE auction_id = ? AND status = ? ORDER BY id`, auctionID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AuctionItem, 0)
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *i)
	}
	return out, rows.Err()
}

func (t *sqlTx) FindItemByPlayer(ctx context.Context, playerID uint64, status model.ItemStatus) (*model.AuctionItem, error) {
	i, err := scanItem(t.tx.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM auction_items WHERE player_id = ? AND status = ? ORDER BY id LIMIT 1`, playerID, status))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return i, err
}

func (t *sqlTx) CreateItem(ctx context.Context, i *model.AuctionItem) error {
	const q = `INSERT INTO auction_items (player_id, auction_id, starting_bid, current_bid, current_bidder_id,
	           nominated_by_user_id, added_time, first_bid_time, last_bid_time, end_time, status, contract_deadline,
	           roster_compliance_deadline, can_delete_bid, current_minimum_increment, is_minor_leaguer, version)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`
	res, err := t.tx.ExecContext(ctx, q, i.PlayerID, i.AuctionID, i.StartingBid, nullDecimal(i.CurrentBid),
		nullUint(i.CurrentBidderID), i.NominatedByUserID, i.AddedTime, nullTime(i.FirstBidTime),
		nullTime(i.LastBidTime), nullTime(i.EndTime), i.Status, nullTime(i.ContractDeadline),
		nullTime(i.RosterComplianceDeadline), i.CanDeleteBid, i.CurrentMinimumIncrement, i.IsMinorLeaguer)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	i.ID = uint64(id)
	i.Version = 0
	return nil
}

// UpdateItem writes every mutable column guarded by the version the
// caller read.  Zero affected rows means a concurrent writer won.
func (t *sqlTx) UpdateItem(ctx context.Context, i *model.AuctionItem) error {
	const q = `UPDATE auction_items SET starting_bid = ?, current_bid = ?, current_bidder_id = ?, first_bid_time = ?,
	           last_bid_time = ?, end_time = ?, status = ?, contract_deadline = ?, roster_compliance_deadline = ?,
	           can_delete_bid = ?, current_minimum_increment = ?, version = version + 1
	           WHERE id = ? AND version = ?`
	res, err := t.tx.ExecContext(ctx, q, i.StartingBid, nullDecimal(i.CurrentBid), nullUint(i.CurrentBidderID),
		nullTime(i.FirstBidTime), nullTime(i.LastBidTime), nullTime(i.EndTime), i.Status,
		nullTime(i.ContractDeadline), nullTime(i.RosterComplianceDeadline), i.CanDeleteBid,
		i.CurrentMinimumIncrement, i.ID, i.Version)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	i.Version++
	return nil
}
