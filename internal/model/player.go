package model

import "github.com/shopspring/decimal"

// Player is a league player.  A nil OwnerID marks a free agent.
type Player struct {
	ID                  uint64          // players.id
	Name                string          // players.name
	Position            string          // players.position
	Team                string          // players.team
	OwnerID             *uint64         // players.owner_id (nullable)
	ContractLength      int             // players.contract_length
	ContractAmount      decimal.Decimal // players.contract_amount
	AverageAnnualSalary decimal.Decimal // players.average_annual_salary
	ContractYear        int             // players.contract_year
	IsMinorLeaguer      bool            // players.is_minor_leaguer
	IsRookie            bool            // players.is_rookie
}

// AuctionClassMinor reports whether the player is bid on under the minor
// league floor and increment.  Rookies share the minor league rules.
func (p *Player) AuctionClassMinor() bool {
	return p.IsMinorLeaguer || p.IsRookie
}
