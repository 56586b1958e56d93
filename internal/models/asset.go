package models

import (
	"math"
	"time"
)

// BasisPointsTotal is the sum every royalty table must reach (100%).
const BasisPointsTotal = 10000

// MaxViewDuration is the longest access period, in seconds, that still fits a time.Duration
const MaxViewDuration = math.MaxInt64 / int64(time.Second)

// Asset represents a minted viewable asset
type Asset struct {
	ID         uint64    `json:"id" db:"id"`
	ContentURI string    `json:"content_uri" db:"content_uri"`
	Minter     string    `json:"minter" db:"minter"`
	MintedAt   time.Time `json:"minted_at" db:"minted_at"`
}

// ViewingTerms holds the price and access duration of an asset
type ViewingTerms struct {
	AssetID  uint64 `json:"asset_id" db:"asset_id"`
	Duration int64  `json:"duration" db:"view_duration"` // in seconds
	Price    int64  `json:"price" db:"price"`            // in fiat minor units (cents)
}

// Period returns the access duration as a time.Duration
func (t ViewingTerms) Period() time.Duration {
	return time.Duration(t.Duration) * time.Second
}

// RoyaltyTable lists the recipients of an asset's payments, aligned by index with their shares
type RoyaltyTable struct {
	AssetID    uint64   `json:"asset_id"`
	Recipients []string `json:"recipients"`
	Shares     []uint32 `json:"shares"` // in basis points
}

// Clone returns a deep copy of the table
func (t RoyaltyTable) Clone() RoyaltyTable {
	return RoyaltyTable{
		AssetID:    t.AssetID,
		Recipients: append([]string(nil), t.Recipients...),
		Shares:     append([]uint32(nil), t.Shares...),
	}
}

// RoyaltyRow is the persisted form of one royalty table entry
type RoyaltyRow struct {
	AssetID   uint64 `db:"asset_id"`
	Position  int    `db:"position"`
	Recipient string `db:"recipient"`
	Share     uint32 `db:"share"`
}

// MintRecord groups everything a single mint writes
type MintRecord struct {
	Asset   Asset
	Terms   *ViewingTerms
	Royalty *RoyaltyTable
}

// Listing is the catalog view of an asset
type Listing struct {
	Asset   Asset         `json:"asset"`
	Terms   *ViewingTerms `json:"terms,omitempty"`
	Royalty *RoyaltyTable `json:"royalty,omitempty"`
}

// ListingListResponse represents the response for listing the catalog
type ListingListResponse struct {
	Listings   []Listing `json:"listings"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}

// ListingParams represents the parameters for paging through the catalog
type ListingParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// MintRequest represents a request to mint an asset.
// Duration and Price select custom terms; recipients alone select the defaults.
type MintRequest struct {
	ContentURI string   `json:"content_uri"`
	Duration   int64    `json:"duration,omitempty"`
	Price      int64    `json:"price,omitempty"`
	Recipients []string `json:"recipients,omitempty"`
	Shares     []uint32 `json:"shares,omitempty"`
}

// SetRoyaltiesRequest represents a request to replace an asset's royalty table
type SetRoyaltiesRequest struct {
	Recipients []string `json:"recipients"`
	Shares     []uint32 `json:"shares"`
}

// Snapshot is the full committed state, used to hydrate the service from storage
type Snapshot struct {
	Assets    []Asset
	Terms     []ViewingTerms
	Royalties []RoyaltyTable
	Grants    []AccessGrant
}
