package model

import "github.com/shopspring/decimal"

const (
	// MaxMajorLeagueRoster is the 40-man roster limit.
	MaxMajorLeagueRoster = 40
	// MaxMinorLeagueRoster is the minor league roster limit.
	MaxMinorLeagueRoster = 25
)

// DefaultSalaryCap is applied to accounts without an explicit cap.
var DefaultSalaryCap = decimal.NewFromInt(100)

// UserAccount is the team-owner side of the auction: a salary cap and two
// roster counters that the contract operations debit and credit.
//
// Fields:
//
//	ID                     – primary key identifier.
//	Username               – unique login name.
//	Role                   – OWNER or COMMISSIONER.
//	SalaryCap              – cap in cap-units (default 100).
//	CurrentSalaryUsed      – committed salary including buyout fees.
//	MajorLeagueRosterCount – players on the 40-man roster.
//	MinorLeagueRosterCount – minor league players.
type UserAccount struct {
	ID                     uint64          // users.id
	Username               string          // users.username
	Role                   string          // users.role
	SalaryCap              decimal.Decimal // users.salary_cap
	CurrentSalaryUsed      decimal.Decimal // users.current_salary_used
	MajorLeagueRosterCount int             // users.major_league_roster_count
	MinorLeagueRosterCount int             // users.minor_league_roster_count
}

// AvailableCapSpace is SalaryCap minus CurrentSalaryUsed.
func (u *UserAccount) AvailableCapSpace() decimal.Decimal {
	return u.SalaryCap.Sub(u.CurrentSalaryUsed)
}

// CanAfford reports whether amount fits in the remaining cap space.
func (u *UserAccount) CanAfford(amount decimal.Decimal) bool {
	return u.AvailableCapSpace().GreaterThanOrEqual(amount)
}

// HasRosterSpace reports whether another player of the given
// classification fits under the roster limit.
func (u *UserAccount) HasRosterSpace(minorLeaguer bool) bool {
	if minorLeaguer {
		return u.MinorLeagueRosterCount < MaxMinorLeagueRoster
	}
	return u.MajorLeagueRosterCount < MaxMajorLeagueRoster
}
