package store

import (
	migrate "github.com/rubenv/sql-migrate"
)

// Migrations returns the schema of the persisted layout
func Migrations() *migrate.MemoryMigrationSource {
	return &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id: "0001_catalog",
				Up: []string{
					`CREATE TABLE IF NOT EXISTS assets (
						id BIGINT PRIMARY KEY,
						content_uri TEXT NOT NULL,
						minter TEXT NOT NULL,
						minted_at TIMESTAMPTZ NOT NULL
					)`,
					`CREATE TABLE IF NOT EXISTS viewing_terms (
						asset_id BIGINT PRIMARY KEY REFERENCES assets(id),
						view_duration BIGINT NOT NULL CHECK (view_duration > 0),
						price BIGINT NOT NULL CHECK (price > 0)
					)`,
					`CREATE TABLE IF NOT EXISTS royalty_recipients (
						asset_id BIGINT NOT NULL REFERENCES assets(id),
						position INT NOT NULL,
						recipient TEXT NOT NULL,
						share INT NOT NULL,
						PRIMARY KEY (asset_id, position)
					)`,
					`CREATE INDEX IF NOT EXISTS royalty_recipients_recipient_idx ON royalty_recipients (recipient)`,
				},
				Down: []string{
					`DROP TABLE IF EXISTS royalty_recipients`,
					`DROP TABLE IF EXISTS viewing_terms`,
					`DROP TABLE IF EXISTS assets`,
				},
			},
			{
				Id: "0002_settlements",
				Up: []string{
					`CREATE TABLE IF NOT EXISTS settlements (
						id UUID PRIMARY KEY,
						asset_id BIGINT NOT NULL REFERENCES assets(id),
						viewer TEXT NOT NULL,
						value NUMERIC(78, 0) NOT NULL,
						required NUMERIC(78, 0) NOT NULL,
						created_at TIMESTAMPTZ NOT NULL
					)`,
					`CREATE TABLE IF NOT EXISTS payouts (
						settlement_id UUID NOT NULL REFERENCES settlements(id),
						position INT NOT NULL,
						recipient TEXT NOT NULL,
						share INT NOT NULL,
						amount NUMERIC(78, 0) NOT NULL CHECK (amount >= 0),
						PRIMARY KEY (settlement_id, position)
					)`,
					`CREATE TABLE IF NOT EXISTS balances (
						address TEXT PRIMARY KEY,
						amount NUMERIC(78, 0) NOT NULL,
						updated_at TIMESTAMPTZ NOT NULL
					)`,
					`CREATE TABLE IF NOT EXISTS access_grants (
						asset_id BIGINT NOT NULL REFERENCES assets(id),
						viewer TEXT NOT NULL,
						expires_at TIMESTAMPTZ NOT NULL,
						settlement_id UUID NOT NULL REFERENCES settlements(id),
						PRIMARY KEY (asset_id, viewer)
					)`,
				},
				Down: []string{
					`DROP TABLE IF EXISTS access_grants`,
					`DROP TABLE IF EXISTS balances`,
					`DROP TABLE IF EXISTS payouts`,
					`DROP TABLE IF EXISTS settlements`,
				},
			},
		},
	}
}
