package main

import (
	"github.com/rs/zerolog"

	"github.com/iliyamo/fantasy-auction/internal/model"
	"github.com/iliyamo/fantasy-auction/internal/repository"
)

// seedDemo gives a memory store a commissioner, two owners and a small
// free-agent pool.  Tokens for the accounts can be minted with
// cmd/devtoken using the logged ids.
func seedDemo(store *repository.MemoryStore, log zerolog.Logger) {
	commish := store.SeedAccount(model.UserAccount{Username: "commissioner", Role: "COMMISSIONER"})
	owners := []uint64{
		store.SeedAccount(model.UserAccount{Username: "owner1", Role: "OWNER"}),
		store.SeedAccount(model.UserAccount{Username: "owner2", Role: "OWNER"}),
	}
	players := []model.Player{
		{Name: "Marcus Reyes", Position: "SP", Team: "SEA"},
		{Name: "Dante Cole", Position: "CF", Team: "ATL"},
		{Name: "Eli Novak", Position: "C", Team: "MIN", IsMinorLeaguer: true},
		{Name: "Jun Takeda", Position: "RP", Team: "LAD", IsRookie: true},
	}
	ids := make([]uint64, 0, len(players))
	for _, p := range players {
		ids = append(ids, store.SeedPlayer(p))
	}
	log.Info().
		Uint64("commissioner_id", commish).
		Interface("owner_ids", owners).
		Interface("player_ids", ids).
		Msg("demo league seeded")
}
