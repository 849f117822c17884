package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/fantasy-auction/internal/model"
)

const contractColumns = `id, auction_item_id, player_id, winner_id, winning_bid, won_time, contract_deadline,
	contract_years, status, buyout_fee, is_minor_leaguer`

func scanContract(row interface{ Scan(...any) error }) (*model.PendingContract, error) {
	var (
		c     model.PendingContract
		years sql.NullInt32
	)
	err := row.Scan(&c.ID, &c.AuctionItemID, &c.PlayerID, &c.WinnerID, &c.WinningBid, &c.WonTime,
		&c.ContractDeadline, &years, &c.Status, &c.BuyoutFee, &c.IsMinorLeaguer)
	if err != nil {
		return nil, err
	}
	if years.Valid {
		y := int(years.Int32)
		c.ContractYears = &y
	}
	return &c, nil
}

func nullYears(y *int) sql.NullInt32 {
	if y == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*y), Valid: true}
}

func (t *sqlTx) listContracts(ctx context.Context, q string, args ...any) ([]model.PendingContract, error) {
	rows, err := t.tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.PendingContract, 0)
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetContract locks the row until the transaction ends.
func (t *sqlTx) GetContract(ctx context.Context, id uint64) (*model.PendingContract, error) {
	c, err := scanContract(t.tx.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM pending_contracts WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (t *sqlTx) CreateContract(ctx context.Context, c *model.PendingContract) error {
	const q = `INSERT INTO pending_contracts (auction_item_id, player_id, winner_id, winning_bid, won_time,
	           contract_deadline, contract_years, status, buyout_fee, is_minor_leaguer)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q, c.AuctionItemID, c.PlayerID, c.WinnerID, c.WinningBid, c.WonTime,
		c.ContractDeadline, nullYears(c.ContractYears), c.Status, c.BuyoutFee, c.IsMinorLeaguer)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

func (t *sqlTx) UpdateContract(ctx context.Context, c *model.PendingContract) error {
	const q = `UPDATE pending_contracts SET contract_years = ?, status = ? WHERE id = ?`
	res, err := t.tx.ExecContext(ctx, q, nullYears(c.ContractYears), c.Status, c.ID)
	return affectedOne(res, err)
}

func (t *sqlTx) ListExpiredContracts(ctx context.Context, now time.Time) ([]model.PendingContract, error) {
	return t.listContracts(ctx,
		`SELECT `+contractColumns+` FROM pending_contracts WHERE status = ? AND contract_deadline < ? ORDER BY id`,
		model.ContractPending, now)
}

func (t *sqlTx) ListContractsByWinner(ctx context.Context, winnerID uint64, status model.ContractStatus) ([]model.PendingContract, error) {
	return t.listContracts(ctx,
		`SELECT `+contractColumns+` FROM pending_contracts WHERE winner_id = ? AND status = ? ORDER BY id`,
		winnerID, status)
}
