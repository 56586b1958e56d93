package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satonic/payperview-api/internal/models"
)

func TestCatalogService_List(t *testing.T) {
	env := newTestEnv(t)
	catalog := NewCatalogService(env.svc, env.treasury)

	for i := 0; i < 12; i++ {
		env.mintListed(t)
	}

	first := catalog.List(models.ListingParams{})
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 10, first.PageSize)
	assert.Equal(t, 12, first.TotalCount)
	require.Len(t, first.Listings, 10)
	assert.Equal(t, uint64(1), first.Listings[0].Asset.ID)
	require.NotNil(t, first.Listings[0].Terms)
	require.NotNil(t, first.Listings[0].Royalty)

	second := catalog.List(models.ListingParams{Page: 2, PageSize: 10})
	require.Len(t, second.Listings, 2)
	assert.Equal(t, uint64(11), second.Listings[0].Asset.ID)

	assert.Empty(t, catalog.List(models.ListingParams{Page: 5, PageSize: 10}).Listings)
}

func TestCatalogService_Reads(t *testing.T) {
	env := newTestEnv(t)
	catalog := NewCatalogService(env.svc, env.treasury)
	id := env.mintListed(t)

	assert.Equal(t, uint64(1), catalog.TokenCount())

	uri, err := catalog.TokenURI(id)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://asset", uri)

	terms, err := catalog.ViewingDetailsFor(id)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), terms.Duration)
	assert.Equal(t, int64(1500), terms.Price)

	_, err = catalog.ViewingDetailsFor(id + 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	listing, err := catalog.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "minter", listing.Asset.Minter)

	_, err = catalog.GetByID(id + 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Equal(t, []uint64{id}, catalog.TokenIDsAddressCanRedeemFrom(addr2))

	price, err := catalog.LatestPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(testPrice), price)
}

func TestCatalogService_CanViewAndBalance(t *testing.T) {
	env := newTestEnv(t)
	catalog := NewCatalogService(env.svc, env.treasury)
	id := env.mintListed(t)

	status := catalog.CanView("viewer", id)
	assert.False(t, status.CanView)
	assert.Nil(t, status.ExpiresAt)

	_, err := env.svc.AddViewer(context.Background(), "viewer", id, dec(required1500))
	require.NoError(t, err)

	status = catalog.CanView("viewer", id)
	assert.True(t, status.CanView)
	require.NotNil(t, status.ExpiresAt)
	assert.Equal(t, env.clock.Now().Add(time.Hour), *status.ExpiresAt)

	env.clock.Advance(2 * time.Hour)
	status = catalog.CanView("viewer", id)
	assert.False(t, status.CanView)
	assert.NotNil(t, status.ExpiresAt)

	balance, err := catalog.Balance(context.Background(), addr3)
	require.NoError(t, err)
	assert.Equal(t, addr3, balance.Address)
	assert.Equal(t, "449149996", balance.Amount.String())

	quote, err := catalog.Quote(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, required1500, quote.Required.String())
}
