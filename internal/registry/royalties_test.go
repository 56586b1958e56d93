package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satonic/payperview-api/internal/models"
)

func TestValidateRoyalty(t *testing.T) {
	tests := []struct {
		name       string
		recipients []string
		shares     []uint32
		wantErr    bool
	}{
		{"single recipient", []string{"a"}, []uint32{10000}, false},
		{"even split", []string{"a", "b"}, []uint32{5000, 5000}, false},
		{"duplicate recipient", []string{"a", "a"}, []uint32{4000, 6000}, false},
		{"empty", nil, nil, true},
		{"length mismatch", []string{"a", "b"}, []uint32{10000}, true},
		{"under 100 percent", []string{"a", "b"}, []uint32{5000, 4999}, true},
		{"over 100 percent", []string{"a", "b"}, []uint32{5000, 5001}, true},
		{"blank recipient", []string{"a", ""}, []uint32{5000, 5000}, true},
		{"overflowing shares", []string{"a", "b"}, []uint32{4294967295, 10001}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoyalty(tt.recipients, tt.shares)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRoyaltyTable_ReverseIndex(t *testing.T) {
	r := NewRoyaltyTable()
	require.NoError(t, r.Set(models.RoyaltyTable{AssetID: 2, Recipients: []string{"addr2", "addr3"}, Shares: []uint32{5000, 5000}}))
	require.NoError(t, r.Set(models.RoyaltyTable{AssetID: 1, Recipients: []string{"addr2"}, Shares: []uint32{10000}}))

	assert.Equal(t, []uint64{1, 2}, r.AssetsFor("addr2"))
	assert.Equal(t, []uint64{2}, r.AssetsFor("addr3"))
	assert.Empty(t, r.AssetsFor("addr4"))
}

func TestRoyaltyTable_ReplaceRebuildsIndex(t *testing.T) {
	r := NewRoyaltyTable()
	require.NoError(t, r.Set(models.RoyaltyTable{AssetID: 1, Recipients: []string{"a", "b"}, Shares: []uint32{5000, 5000}}))
	require.NoError(t, r.Set(models.RoyaltyTable{AssetID: 1, Recipients: []string{"b", "c", "c"}, Shares: []uint32{2000, 4000, 4000}}))

	assert.Empty(t, r.AssetsFor("a"))
	assert.Equal(t, []uint64{1}, r.AssetsFor("b"))
	assert.Equal(t, []uint64{1}, r.AssetsFor("c"))

	table, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "c"}, table.Recipients)
	assert.Equal(t, []uint32{2000, 4000, 4000}, table.Shares)
}

func TestRoyaltyTable_InvalidSetKeepsPrevious(t *testing.T) {
	r := NewRoyaltyTable()
	require.NoError(t, r.Set(models.RoyaltyTable{AssetID: 1, Recipients: []string{"a"}, Shares: []uint32{10000}}))

	err := r.Set(models.RoyaltyTable{AssetID: 1, Recipients: []string{"b"}, Shares: []uint32{9999}})
	assert.ErrorIs(t, err, models.ErrValidation)

	table, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, table.Recipients)
	assert.Equal(t, []uint64{1}, r.AssetsFor("a"))
	assert.Empty(t, r.AssetsFor("b"))
}

func TestRoyaltyTable_GetReturnsCopy(t *testing.T) {
	r := NewRoyaltyTable()
	require.NoError(t, r.Set(models.RoyaltyTable{AssetID: 1, Recipients: []string{"a"}, Shares: []uint32{10000}}))

	table, err := r.Get(1)
	require.NoError(t, err)
	table.Recipients[0] = "mallory"

	again, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Recipients[0])

	_, err = r.Get(2)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
