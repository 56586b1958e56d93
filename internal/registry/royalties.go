package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/satonic/payperview-api/internal/models"
)

// RoyaltyTable keeps each asset's recipients and a reverse index from recipient to asset ids
type RoyaltyTable struct {
	tables map[uint64]models.RoyaltyTable
	index  map[string]map[uint64]struct{}
}

// NewRoyaltyTable creates an empty RoyaltyTable
func NewRoyaltyTable() *RoyaltyTable {
	return &RoyaltyTable{
		tables: make(map[uint64]models.RoyaltyTable),
		index:  make(map[string]map[uint64]struct{}),
	}
}

// Set replaces the table for an asset and rebuilds the affected index entries
func (t *RoyaltyTable) Set(table models.RoyaltyTable) error {
	if err := ValidateRoyalty(table.Recipients, table.Shares); err != nil {
		return err
	}

	if old, ok := t.tables[table.AssetID]; ok {
		for _, recipient := range old.Recipients {
			t.unindex(recipient, table.AssetID)
		}
	}

	table = table.Clone()
	t.tables[table.AssetID] = table
	for _, recipient := range table.Recipients {
		if _, ok := t.index[recipient]; !ok {
			t.index[recipient] = make(map[uint64]struct{})
		}
		t.index[recipient][table.AssetID] = struct{}{}
	}
	return nil
}

func (t *RoyaltyTable) unindex(recipient string, assetID uint64) {
	ids, ok := t.index[recipient]
	if !ok {
		return
	}
	delete(ids, assetID)
	if len(ids) == 0 {
		delete(t.index, recipient)
	}
}

// Get returns a copy of the table for an asset
func (t *RoyaltyTable) Get(assetID uint64) (models.RoyaltyTable, error) {
	table, ok := t.tables[assetID]
	if !ok {
		return models.RoyaltyTable{}, fmt.Errorf("%w: royalty recipients for asset %d", models.ErrNotFound, assetID)
	}
	return table.Clone(), nil
}

// AssetsFor returns, in ascending order, the ids of every asset listing the address as a recipient
func (t *RoyaltyTable) AssetsFor(address string) []uint64 {
	ids := make([]uint64, 0, len(t.index[address]))
	for id := range t.index[address] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ValidateRoyalty checks that recipients and shares align and that shares sum to 10000.
// A recipient may appear more than once.
func ValidateRoyalty(recipients []string, shares []uint32) error {
	if len(recipients) == 0 {
		return fmt.Errorf("%w: at least one royalty recipient is required", models.ErrValidation)
	}
	if len(recipients) != len(shares) {
		return fmt.Errorf("%w: %d recipients but %d shares", models.ErrValidation, len(recipients), len(shares))
	}

	var sum uint64
	for i, recipient := range recipients {
		if strings.TrimSpace(recipient) == "" {
			return fmt.Errorf("%w: recipient %d has no address", models.ErrValidation, i)
		}
		sum += uint64(shares[i])
	}
	if sum != models.BasisPointsTotal {
		return fmt.Errorf("%w: shares sum to %d, want %d", models.ErrValidation, sum, models.BasisPointsTotal)
	}
	return nil
}
