package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/fantasy-auction/internal/model"
)

// GetAccount locks the user row so concurrent awards and buyouts against
// the same owner serialise on the cap counters.
func (t *sqlTx) GetAccount(ctx context.Context, id uint64) (*model.UserAccount, error) {
	const q = `SELECT id, username, role, salary_cap, current_salary_used, major_league_roster_count,
	           minor_league_roster_count FROM users WHERE id = ? FOR UPDATE`
	var u model.UserAccount
	err := t.tx.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Username, &u.Role, &u.SalaryCap,
		&u.CurrentSalaryUsed, &u.MajorLeagueRosterCount, &u.MinorLeagueRosterCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (t *sqlTx) UpdateAccount(ctx context.Context, u *model.UserAccount) error {
	const q = `UPDATE users SET salary_cap = ?, current_salary_used = ?, major_league_roster_count = ?,
	           minor_league_roster_count = ? WHERE id = ?`
	// MySQL reports zero affected rows for a no-op update, so RowsAffected
	// cannot signal a missing row here.
	_, err := t.tx.ExecContext(ctx, q, u.SalaryCap, u.CurrentSalaryUsed, u.MajorLeagueRosterCount,
		u.MinorLeagueRosterCount, u.ID)
	return err
}
