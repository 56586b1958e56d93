package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccessGrant gates viewing of an asset until ExpiresAt
type AccessGrant struct {
	AssetID      uint64    `json:"asset_id" db:"asset_id"`
	Viewer       string    `json:"viewer" db:"viewer"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
	SettlementID string    `json:"settlement_id" db:"settlement_id"`
}

// Payout is a single disbursement line of a settlement
type Payout struct {
	Recipient string          `json:"recipient" db:"recipient"`
	Share     uint32          `json:"share" db:"share"`
	Amount    decimal.Decimal `json:"amount" db:"amount"` // in native subunits
}

// Settlement records one successful viewing purchase
type Settlement struct {
	ID        string          `json:"id" db:"id"`
	AssetID   uint64          `json:"asset_id" db:"asset_id"`
	Viewer    string          `json:"viewer" db:"viewer"`
	Value     decimal.Decimal `json:"value" db:"value"`
	Required  decimal.Decimal `json:"required" db:"required"`
	Payouts   []Payout        `json:"payouts"`
	Grant     AccessGrant     `json:"grant"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Total returns the sum of all payout amounts
func (s Settlement) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payouts {
		total = total.Add(p.Amount)
	}
	return total
}

// AddViewerRequest represents a viewing purchase; Value is the transmitted native amount
type AddViewerRequest struct {
	Value decimal.Decimal `json:"value"`
}

// AccessStatus reports whether an address can currently view an asset
type AccessStatus struct {
	AssetID   uint64     `json:"asset_id"`
	Viewer    string     `json:"viewer"`
	CanView   bool       `json:"can_view"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Quote is the native amount currently required to view an asset
type Quote struct {
	AssetID  uint64          `json:"asset_id"`
	Price    int64           `json:"price"`
	Required decimal.Decimal `json:"required"`
}

// Balance is the native amount credited to a recipient
type Balance struct {
	Address string          `json:"address" db:"address"`
	Amount  decimal.Decimal `json:"amount" db:"amount"`
}
