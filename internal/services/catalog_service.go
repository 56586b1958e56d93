package services

import (
	"context"

	"github.com/satonic/payperview-api/internal/models"
)

// CatalogService answers read-only questions about the catalog for presentation clients
type CatalogService struct {
	ppv      *PayPerViewService
	treasury Treasury
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(ppv *PayPerViewService, treasury Treasury) *CatalogService {
	return &CatalogService{
		ppv:      ppv,
		treasury: treasury,
	}
}

// TokenCount returns the number of minted assets
func (s *CatalogService) TokenCount() uint64 {
	return s.ppv.TokenCount()
}

// TokenURI returns the content URI of an asset
func (s *CatalogService) TokenURI(assetID uint64) (string, error) {
	return s.ppv.TokenURI(assetID)
}

// ViewingDetailsFor returns the viewing terms of an asset
func (s *CatalogService) ViewingDetailsFor(assetID uint64) (*models.ViewingTerms, error) {
	duration, price, err := s.ppv.ViewingDetailsFor(assetID)
	if err != nil {
		return nil, err
	}
	return &models.ViewingTerms{AssetID: assetID, Duration: duration, Price: price}, nil
}

// CanView reports the viewer's access to an asset
func (s *CatalogService) CanView(viewer string, assetID uint64) models.AccessStatus {
	viewer = CanonicalAddress(viewer)
	status := models.AccessStatus{
		AssetID: assetID,
		Viewer:  viewer,
		CanView: s.ppv.CanView(viewer, assetID),
	}
	if grant, ok := s.ppv.AccessGrant(viewer, assetID); ok {
		expiresAt := grant.ExpiresAt
		status.ExpiresAt = &expiresAt
	}
	return status
}

// TokenIDsAddressCanRedeemFrom returns the assets paying royalties to address
func (s *CatalogService) TokenIDsAddressCanRedeemFrom(address string) []uint64 {
	return s.ppv.TokenIDsAddressCanRedeemFrom(address)
}

// GetByID retrieves a listing by asset id
func (s *CatalogService) GetByID(assetID uint64) (*models.Listing, error) {
	return s.ppv.Listing(assetID)
}

// List retrieves a page of the catalog
func (s *CatalogService) List(params models.ListingParams) *models.ListingListResponse {
	// Default pagination values
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 10
	}

	listings, total := s.ppv.Listings((params.Page-1)*params.PageSize, params.PageSize)

	return &models.ListingListResponse{
		Listings:   listings,
		TotalCount: total,
		Page:       params.Page,
		PageSize:   params.PageSize,
	}
}

// Quote returns the native amount currently required to view an asset
func (s *CatalogService) Quote(ctx context.Context, assetID uint64) (*models.Quote, error) {
	return s.ppv.RequiredPayment(ctx, assetID)
}

// LatestPrice returns the oracle's raw quote
func (s *CatalogService) LatestPrice(ctx context.Context) (int64, error) {
	return s.ppv.LatestPrice(ctx)
}

// Balance returns the native amount credited to a recipient
func (s *CatalogService) Balance(ctx context.Context, address string) (*models.Balance, error) {
	address = CanonicalAddress(address)
	amount, err := s.treasury.Balance(ctx, address)
	if err != nil {
		return nil, err
	}
	return &models.Balance{Address: address, Amount: amount}, nil
}
