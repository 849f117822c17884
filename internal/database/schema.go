package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order by Migrate.  Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(64) NOT NULL UNIQUE,
		role VARCHAR(16) NOT NULL DEFAULT 'OWNER',
		salary_cap DECIMAL(12,4) NOT NULL DEFAULT 100.00,
		current_salary_used DECIMAL(12,4) NOT NULL DEFAULT 0.00,
		major_league_roster_count INT NOT NULL DEFAULT 0,
		minor_league_roster_count INT NOT NULL DEFAULT 0
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS players (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(128) NOT NULL,
		position VARCHAR(16) NOT NULL DEFAULT '',
		team VARCHAR(64) NOT NULL DEFAULT '',
		owner_id BIGINT UNSIGNED NULL,
		contract_length INT NOT NULL DEFAULT 0,
		contract_amount DECIMAL(12,4) NOT NULL DEFAULT 0.00,
		average_annual_salary DECIMAL(12,4) NOT NULL DEFAULT 0.00,
		contract_year INT NOT NULL DEFAULT 0,
		is_minor_leaguer BOOLEAN NOT NULL DEFAULT FALSE,
		is_rookie BOOLEAN NOT NULL DEFAULT FALSE,
		CONSTRAINT fk_players_owner FOREIGN KEY (owner_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS auctions (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(128) NOT NULL,
		start_time DATETIME(3) NOT NULL,
		end_time DATETIME(3) NOT NULL,
		created_by_commissioner_id BIGINT UNSIGNED NOT NULL,
		status VARCHAR(16) NOT NULL,
		auction_type VARCHAR(16) NOT NULL,
		description TEXT NOT NULL,
		KEY idx_auctions_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS auction_items (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		player_id BIGINT UNSIGNED NOT NULL,
		auction_id BIGINT UNSIGNED NOT NULL,
		starting_bid DECIMAL(12,4) NOT NULL,
		current_bid DECIMAL(12,4) NULL,
		current_bidder_id BIGINT UNSIGNED NULL,
		nominated_by_user_id BIGINT UNSIGNED NOT NULL,
		added_time DATETIME(3) NOT NULL,
		first_bid_time DATETIME(3) NULL,
		last_bid_time DATETIME(3) NULL,
		end_time DATETIME(3) NULL,
		status VARCHAR(24) NOT NULL,
		contract_deadline DATETIME(3) NULL,
		roster_compliance_deadline DATETIME(3) NULL,
		can_delete_bid BOOLEAN NOT NULL DEFAULT TRUE,
		current_minimum_increment DECIMAL(12,4) NOT NULL DEFAULT 0.00,
		is_minor_leaguer BOOLEAN NOT NULL DEFAULT FALSE,
		version INT UNSIGNED NOT NULL DEFAULT 0,
		KEY idx_items_auction_status (auction_id, status),
		KEY idx_items_player_status (player_id, status),
		CONSTRAINT fk_items_player FOREIGN KEY (player_id) REFERENCES players(id),
		CONSTRAINT fk_items_auction FOREIGN KEY (auction_id) REFERENCES auctions(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bids (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		auction_item_id BIGINT UNSIGNED NOT NULL,
		bidder_id BIGINT UNSIGNED NOT NULL,
		amount DECIMAL(12,4) NOT NULL,
		bid_time DATETIME(3) NOT NULL,
		status VARCHAR(16) NOT NULL,
		KEY idx_bids_item_amount (auction_item_id, amount),
		KEY idx_bids_bidder (bidder_id),
		CONSTRAINT fk_bids_item FOREIGN KEY (auction_item_id) REFERENCES auction_items(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS pending_contracts (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		auction_item_id BIGINT UNSIGNED NOT NULL,
		player_id BIGINT UNSIGNED NOT NULL,
		winner_id BIGINT UNSIGNED NOT NULL,
		winning_bid DECIMAL(12,4) NOT NULL,
		won_time DATETIME(3) NOT NULL,
		contract_deadline DATETIME(3) NOT NULL,
		contract_years INT NULL,
		status VARCHAR(16) NOT NULL,
		buyout_fee DECIMAL(12,4) NOT NULL,
		is_minor_leaguer BOOLEAN NOT NULL DEFAULT FALSE,
		KEY idx_contracts_status_deadline (status, contract_deadline),
		KEY idx_contracts_winner (winner_id, status),
		CONSTRAINT fk_contracts_item FOREIGN KEY (auction_item_id) REFERENCES auction_items(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS released_players_queue (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		player_id BIGINT UNSIGNED NOT NULL,
		player_name VARCHAR(128) NOT NULL,
		position VARCHAR(16) NOT NULL DEFAULT '',
		team VARCHAR(64) NOT NULL DEFAULT '',
		previous_contract_length INT NOT NULL DEFAULT 0,
		previous_contract_amount DECIMAL(12,4) NOT NULL DEFAULT 0.00,
		previous_owner_id BIGINT UNSIGNED NULL,
		released_at DATETIME(3) NOT NULL,
		status VARCHAR(24) NOT NULL,
		KEY idx_releases_status (status, released_at),
		CONSTRAINT fk_releases_player FOREIGN KEY (player_id) REFERENCES players(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// upgrades bring tables created with the earlier two-place money and
// whole-second time columns to the current types.  MODIFY is a no-op when
// a column already has the target type.
var upgrades = []string{
	`ALTER TABLE users
		MODIFY salary_cap DECIMAL(12,4) NOT NULL DEFAULT 100.00,
		MODIFY current_salary_used DECIMAL(12,4) NOT NULL DEFAULT 0.00`,
	`ALTER TABLE players
		MODIFY contract_amount DECIMAL(12,4) NOT NULL DEFAULT 0.00,
		MODIFY average_annual_salary DECIMAL(12,4) NOT NULL DEFAULT 0.00`,
	`ALTER TABLE auctions
		MODIFY start_time DATETIME(3) NOT NULL,
		MODIFY end_time DATETIME(3) NOT NULL`,
	`ALTER TABLE auction_items
		MODIFY starting_bid DECIMAL(12,4) NOT NULL,
		MODIFY current_bid DECIMAL(12,4) NULL,
		MODIFY added_time DATETIME(3) NOT NULL,
		MODIFY first_bid_time DATETIME(3) NULL,
		MODIFY last_bid_time DATETIME(3) NULL,
		MODIFY end_time DATETIME(3) NULL,
		MODIFY contract_deadline DATETIME(3) NULL,
		MODIFY roster_compliance_deadline DATETIME(3) NULL,
		MODIFY current_minimum_increment DECIMAL(12,4) NOT NULL DEFAULT 0.00`,
	`ALTER TABLE bids
		MODIFY amount DECIMAL(12,4) NOT NULL`,
	`ALTER TABLE pending_contracts
		MODIFY winning_bid DECIMAL(12,4) NOT NULL,
		MODIFY won_time DATETIME(3) NOT NULL,
		MODIFY contract_deadline DATETIME(3) NOT NULL,
		MODIFY buyout_fee DECIMAL(12,4) NOT NULL`,
}

// Migrate creates the auction tables when they are missing and upgrades
// column types on existing ones.
func Migrate(ctx context.Context, db *sql.DB) error {
	steps := append(append([]string{}, schema...), upgrades...)
	for i, stmt := range steps {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
