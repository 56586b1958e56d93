package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/satonic/payperview-api/internal/models"
)

// SettlementRepository credits royalty payouts and records access grants in one transaction
type SettlementRepository struct {
	db *Database
}

// NewSettlementRepository creates a new SettlementRepository
func NewSettlementRepository(db *Database) *SettlementRepository {
	return &SettlementRepository{
		db: db,
	}
}

// Settle writes the settlement, its payouts, the recipients' balances and the grant, or nothing
func (r *SettlementRepository) Settle(ctx context.Context, settlement models.Settlement) error {
	if !settlement.Total().Equal(settlement.Value) {
		return fmt.Errorf("%w: payouts total %s but %s was transmitted", models.ErrTransferFailure, settlement.Total(), settlement.Value)
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		query := `INSERT INTO settlements (id, asset_id, viewer, value, required, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`
		_, err := tx.ExecContext(ctx, query,
			settlement.ID, settlement.AssetID, settlement.Viewer,
			settlement.Value, settlement.Required, settlement.CreatedAt)
		if err != nil {
			return err
		}

		now := time.Now()
		for i, p := range settlement.Payouts {
			query = `INSERT INTO payouts (settlement_id, position, recipient, share, amount)
					 VALUES ($1, $2, $3, $4, $5)`
			if _, err := tx.ExecContext(ctx, query, settlement.ID, i, p.Recipient, p.Share, p.Amount); err != nil {
				return err
			}

			query = `INSERT INTO balances (address, amount, updated_at) VALUES ($1, $2, $3)
					 ON CONFLICT (address) DO UPDATE
					 SET amount = balances.amount + EXCLUDED.amount, updated_at = EXCLUDED.updated_at`
			if _, err := tx.ExecContext(ctx, query, p.Recipient, p.Amount, now); err != nil {
				return err
			}
		}

		grant := settlement.Grant
		query = `INSERT INTO access_grants (asset_id, viewer, expires_at, settlement_id)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT (asset_id, viewer) DO UPDATE
				 SET expires_at = EXCLUDED.expires_at, settlement_id = EXCLUDED.settlement_id`
		_, err = tx.ExecContext(ctx, query, grant.AssetID, grant.Viewer, grant.ExpiresAt, grant.SettlementID)
		return err
	})
}

// Balance returns the amount credited to address
func (r *SettlementRepository) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := r.db.GetDB().GetContext(ctx, &amount, `SELECT amount FROM balances WHERE address = $1`, address)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return amount, nil
}
