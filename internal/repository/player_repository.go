package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/fantasy-auction/internal/model"
)

func (t *sqlTx) GetPlayer(ctx context.Context, id uint64) (*model.Player, error) {
	const q = `SELECT id, name, position, team, owner_id, contract_length, contract_amount, average_annual_salary,
	           contract_year, is_minor_leaguer, is_rookie FROM players WHERE id = ?`
	var (
		p     model.Player
		owner sql.NullInt64
	)
	err := t.tx.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &p.Position, &p.Team, &owner, &p.ContractLength,
		&p.ContractAmount, &p.AverageAnnualSalary, &p.ContractYear, &p.IsMinorLeaguer, &p.IsRookie)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.OwnerID = uintPtr(owner)
	return &p, nil
}

func (t *sqlTx) UpdatePlayer(ctx context.Context, p *model.Player) error {
	const q = `UPDATE players SET owner_id = ?, contract_length = ?, contract_amount = ?, average_annual_salary = ?,
	           contract_year = ? WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, q, nullUint(p.OwnerID), p.ContractLength, p.ContractAmount,
		p.AverageAnnualSalary, p.ContractYear, p.ID)
	return err
}
