// Package registry holds the in-memory arenas behind the pay-per-view service:
// assets, viewing terms, royalty tables and access grants.
//
// None of the types here synchronise access; the owning service serialises writers
// and guards readers.
package registry

import (
	"fmt"
	"strings"

	"github.com/satonic/payperview-api/internal/models"
)

// TokenRegistry assigns sequential asset ids starting at 1
type TokenRegistry struct {
	assets []models.Asset
}

// NewTokenRegistry creates an empty TokenRegistry
func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{}
}

// NextID returns the id the next mint will receive
func (r *TokenRegistry) NextID() uint64 {
	return uint64(len(r.assets)) + 1
}

// Count returns the number of minted assets
func (r *TokenRegistry) Count() uint64 {
	return uint64(len(r.assets))
}

// Add appends an asset. Its id must be NextID().
func (r *TokenRegistry) Add(asset models.Asset) error {
	if err := ValidateContentURI(asset.ContentURI); err != nil {
		return err
	}
	if asset.ID != r.NextID() {
		return fmt.Errorf("%w: asset id %d out of sequence, expected %d", models.ErrValidation, asset.ID, r.NextID())
	}
	r.assets = append(r.assets, asset)
	return nil
}

// Get retrieves an asset by id
func (r *TokenRegistry) Get(id uint64) (models.Asset, bool) {
	if id == 0 || id > uint64(len(r.assets)) {
		return models.Asset{}, false
	}
	return r.assets[id-1], true
}

// URI returns the content URI of a minted asset
func (r *TokenRegistry) URI(id uint64) (string, error) {
	asset, ok := r.Get(id)
	if !ok {
		return "", fmt.Errorf("%w: asset %d", models.ErrNotFound, id)
	}
	return asset.ContentURI, nil
}

// Page returns up to limit assets starting at offset, in id order
func (r *TokenRegistry) Page(offset, limit int) []models.Asset {
	if offset < 0 || offset >= len(r.assets) || limit <= 0 {
		return []models.Asset{}
	}
	end := offset + limit
	if end > len(r.assets) {
		end = len(r.assets)
	}
	return append([]models.Asset(nil), r.assets[offset:end]...)
}

// ValidateContentURI rejects blank content references
func ValidateContentURI(uri string) error {
	if strings.TrimSpace(uri) == "" {
		return fmt.Errorf("%w: content URI is required", models.ErrValidation)
	}
	return nil
}
