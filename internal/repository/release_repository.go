package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/fantasy-auction/internal/model"
)

const releaseColumns = `id, player_id, player_name, position, team, previous_contract_length,
	previous_contract_amount, previous_owner_id, released_at, status`

func scanRelease(row interface{ Scan(...any) error }) (*model.ReleasedPlayer, error) {
	var (
		r     model.ReleasedPlayer
		owner sql.NullInt64
	)
	err := row.Scan(&r.ID, &r.PlayerID, &r.PlayerName, &r.Position, &r.Team, &r.PreviousContractLength,
		&r.PreviousContractAmount, &owner, &r.ReleasedAt, &r.Status)
	if err != nil {
		return nil, err
	}
	r.PreviousOwnerID = uintPtr(owner)
	return &r, nil
}

// GetRelease locks the entry until the transaction ends.
func (t *sqlTx) GetRelease(ctx context.Context, id uint64) (*model.ReleasedPlayer, error) {
	r, err := scanRelease(t.tx.QueryRowContext(ctx,
		`SELECT `+releaseColumns+` FROM released_players_queue WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (t *sqlTx) CreateRelease(ctx context.Context, r *model.ReleasedPlayer) error {
	const q = `INSERT INTO released_players_queue (player_id, player_name, position, team, previous_contract_length,
	           previous_contract_amount, previous_owner_id, released_at, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q, r.PlayerID, r.PlayerName, r.Position, r.Team, r.PreviousContractLength,
		r.PreviousContractAmount, nullUint(r.PreviousOwnerID), r.ReleasedAt, r.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = uint64(id)
	return nil
}

func (t *sqlTx) UpdateRelease(ctx context.Context, r *model.ReleasedPlayer) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE released_players_queue SET status = ? WHERE id = ?`, r.Status, r.ID)
	return affectedOne(res, err)
}

func (t *sqlTx) ListReleases(ctx context.Context, status model.ReleaseStatus) ([]model.ReleasedPlayer, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+releaseColumns+` FROM released_players_queue WHERE status = ? ORDER BY released_at DESC, id DESC`,
		status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ReleasedPlayer, 0)
	for rows.Next() {
		r, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}
