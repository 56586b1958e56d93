package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satonic/payperview-api/internal/models"
)

func TestTokenRegistry_SequentialIDs(t *testing.T) {
	r := NewTokenRegistry()
	assert.Equal(t, uint64(0), r.Count())
	assert.Equal(t, uint64(1), r.NextID())

	require.NoError(t, r.Add(models.Asset{ID: 1, ContentURI: "ipfs://a"}))
	require.NoError(t, r.Add(models.Asset{ID: 2, ContentURI: "ipfs://b"}))

	assert.Equal(t, uint64(2), r.Count())
	assert.Equal(t, uint64(3), r.NextID())

	uri, err := r.URI(2)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://b", uri)
}

func TestTokenRegistry_Add_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		asset models.Asset
	}{
		{"blank uri", models.Asset{ID: 1, ContentURI: "  "}},
		{"skipped id", models.Asset{ID: 2, ContentURI: "ipfs://a"}},
		{"zero id", models.Asset{ID: 0, ContentURI: "ipfs://a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTokenRegistry()
			err := r.Add(tt.asset)
			assert.ErrorIs(t, err, models.ErrValidation)
			assert.Equal(t, uint64(0), r.Count())
		})
	}
}

func TestTokenRegistry_URI_NotFound(t *testing.T) {
	r := NewTokenRegistry()
	require.NoError(t, r.Add(models.Asset{ID: 1, ContentURI: "ipfs://a"}))

	for _, id := range []uint64{0, 2, 100} {
		_, err := r.URI(id)
		assert.ErrorIs(t, err, models.ErrNotFound, "id %d", id)
	}
}

func TestTokenRegistry_Page(t *testing.T) {
	r := NewTokenRegistry()
	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, r.Add(models.Asset{ID: i, ContentURI: "ipfs://x"}))
	}

	page := r.Page(1, 2)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(2), page[0].ID)
	assert.Equal(t, uint64(3), page[1].ID)

	assert.Len(t, r.Page(4, 10), 1)
	assert.Empty(t, r.Page(5, 10))
	assert.Empty(t, r.Page(0, 0))
}

func TestTermsStore(t *testing.T) {
	s := NewTermsStore()

	_, err := s.Get(1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, s.Set(models.ViewingTerms{AssetID: 1, Duration: 60, Price: 100}))
	terms, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, int64(60), terms.Duration)
	assert.Equal(t, int64(100), terms.Price)

	assert.ErrorIs(t, s.Set(models.ViewingTerms{AssetID: 2, Duration: 0, Price: 100}), models.ErrValidation)
	assert.ErrorIs(t, s.Set(models.ViewingTerms{AssetID: 2, Duration: 60, Price: -1}), models.ErrValidation)
	_, err = s.Get(2)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestValidateTerms_DurationBounds(t *testing.T) {
	assert.NoError(t, ValidateTerms(models.MaxViewDuration, 1500))
	assert.ErrorIs(t, ValidateTerms(models.MaxViewDuration+1, 1500), models.ErrValidation)
	assert.ErrorIs(t, ValidateTerms(10_000_000_000, 1500), models.ErrValidation)

	terms := models.ViewingTerms{Duration: models.MaxViewDuration, Price: 1500}
	assert.Positive(t, terms.Period())
}
