package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/satonic/payperview-api/internal/models"
)

// AssetRepository persists assets, viewing terms and royalty tables
type AssetRepository struct {
	db *Database
}

// NewAssetRepository creates a new AssetRepository
func NewAssetRepository(db *Database) *AssetRepository {
	return &AssetRepository{
		db: db,
	}
}

// SaveMint stores an asset together with its terms and royalty table
func (r *AssetRepository) SaveMint(ctx context.Context, record models.MintRecord) error {
	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		query := `INSERT INTO assets (id, content_uri, minter, minted_at) VALUES ($1, $2, $3, $4)`
		_, err := tx.ExecContext(ctx, query,
			record.Asset.ID, record.Asset.ContentURI, record.Asset.Minter, record.Asset.MintedAt)
		if err != nil {
			return err
		}

		if record.Terms != nil {
			query = `INSERT INTO viewing_terms (asset_id, view_duration, price) VALUES ($1, $2, $3)`
			_, err = tx.ExecContext(ctx, query, record.Terms.AssetID, record.Terms.Duration, record.Terms.Price)
			if err != nil {
				return err
			}
		}

		if record.Royalty != nil {
			return insertRoyalty(ctx, tx, *record.Royalty)
		}
		return nil
	})
}

// SaveRoyalty replaces the royalty table of an asset
func (r *AssetRepository) SaveRoyalty(ctx context.Context, table models.RoyaltyTable) error {
	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM royalty_recipients WHERE asset_id = $1`, table.AssetID)
		if err != nil {
			return err
		}
		return insertRoyalty(ctx, tx, table)
	})
}

func insertRoyalty(ctx context.Context, tx *sqlx.Tx, table models.RoyaltyTable) error {
	query := `INSERT INTO royalty_recipients (asset_id, position, recipient, share) VALUES ($1, $2, $3, $4)`
	for i, recipient := range table.Recipients {
		if _, err := tx.ExecContext(ctx, query, table.AssetID, i, recipient, table.Shares[i]); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the whole committed state
func (r *AssetRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	snapshot := &models.Snapshot{}
	db := r.db.GetDB()

	err := db.SelectContext(ctx, &snapshot.Assets,
		`SELECT id, content_uri, minter, minted_at FROM assets ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}

	err = db.SelectContext(ctx, &snapshot.Terms,
		`SELECT asset_id, view_duration, price FROM viewing_terms ORDER BY asset_id ASC`)
	if err != nil {
		return nil, err
	}

	rows := []models.RoyaltyRow{}
	err = db.SelectContext(ctx, &rows,
		`SELECT asset_id, position, recipient, share FROM royalty_recipients ORDER BY asset_id ASC, position ASC`)
	if err != nil {
		return nil, err
	}
	snapshot.Royalties = groupRoyaltyRows(rows)

	err = db.SelectContext(ctx, &snapshot.Grants,
		`SELECT asset_id, viewer, expires_at, settlement_id FROM access_grants`)
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// groupRoyaltyRows folds rows sorted by asset and position into tables
func groupRoyaltyRows(rows []models.RoyaltyRow) []models.RoyaltyTable {
	tables := []models.RoyaltyTable{}
	for _, row := range rows {
		if len(tables) == 0 || tables[len(tables)-1].AssetID != row.AssetID {
			tables = append(tables, models.RoyaltyTable{AssetID: row.AssetID})
		}
		t := &tables[len(tables)-1]
		t.Recipients = append(t.Recipients, row.Recipient)
		t.Shares = append(t.Shares, row.Share)
	}
	return tables
}
