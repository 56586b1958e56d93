package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/satonic/payperview-api/internal/models"
	"github.com/satonic/payperview-api/internal/services"
)

// ListTokens handles retrieving a page of the catalog
func ListTokens(catalog *services.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := parseListingParams(r)
		writeJSON(w, http.StatusOK, catalog.List(params))
	}
}

// TokenCount handles retrieving the number of minted assets
func TokenCount(catalog *services.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]uint64{
			"count": catalog.TokenCount(),
		})
	}
}

// MintToken handles minting an asset for the authenticated address.
// Duration and price select custom terms, recipients alone the default terms, and neither a plain mint.
func MintToken(ppv *services.PayPerViewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minter, _ := AddressFromContext(r.Context())

		var req models.MintRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		var (
			id  uint64
			err error
		)
		switch {
		case req.Duration != 0 || req.Price != 0:
			id, err = ppv.MintWithCustomParams(r.Context(), minter, req.ContentURI, req.Duration, req.Price, req.Recipients, req.Shares)
		case len(req.Recipients) > 0 || len(req.Shares) > 0:
			id, err = ppv.MintWithDefaultParams(r.Context(), minter, req.ContentURI, req.Recipients, req.Shares)
		default:
			id, err = ppv.Mint(r.Context(), minter, req.ContentURI)
		}
		if err != nil {
			writeError(w, err)
			return
		}

		listing, err := ppv.Listing(id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, listing)
	}
}

// GetToken handles retrieving a single listing
func GetToken(catalog *services.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID, err := assetIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}

		listing, err := catalog.GetByID(assetID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, listing)
	}
}

// GetTokenURI handles retrieving the content URI of an asset
func GetTokenURI(catalog *services.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID, err := assetIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}

		uri, err := catalog.TokenURI(assetID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"asset_id":    assetID,
			"content_uri": uri,
		})
	}
}

// GetViewingDetails handles retrieving the viewing terms of an asset
func GetViewingDetails(catalog *services.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID, err := assetIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}

		terms, err := catalog.ViewingDetailsFor(assetID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, terms)
	}
}

// GetQuote handles retrieving the native amount currently required to view an asset
func GetQuote(catalog *services.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID, err := assetIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}

		quote, err := catalog.Quote(r.Context(), assetID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, quote)
	}
}

// SetRoyalties handles replacing the royalty table of an asset
func SetRoyalties(ppv *services.PayPerViewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := AddressFromContext(r.Context())

		assetID, err := assetIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}

		var req models.SetRoyaltiesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := ppv.SetRoyaltyRecipients(r.Context(), caller, assetID, req.Recipients, req.Shares); err != nil {
			writeError(w, err)
			return
		}

		table, err := ppv.RoyaltyRecipients(assetID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, table)
	}
}

// AddViewer handles buying viewing access for the authenticated address
func AddViewer(ppv *services.PayPerViewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := AddressFromContext(r.Context())

		assetID, err := assetIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}

		var req models.AddViewerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		settlement, err := ppv.AddViewer(r.Context(), viewer, assetID, req.Value)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, settlement)
	}
}

// GetViewerAccess handles checking whether an address can view an asset
func GetViewerAccess(catalog *services.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assetID, err := assetIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}

		address, err := services.ParseAddress(chi.URLParam(r, "address"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, catalog.CanView(address, assetID))
	}
}

func assetIDParam(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return 0, fmt.Errorf("%w: asset id is required", models.ErrValidation)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid asset id %q", models.ErrValidation, raw)
	}
	return id, nil
}

// Helper function to parse catalog query parameters
func parseListingParams(r *http.Request) models.ListingParams {
	params := models.ListingParams{}

	pageStr := r.URL.Query().Get("page")
	if pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err == nil && page > 0 {
			params.Page = page
		}
	}

	pageSizeStr := r.URL.Query().Get("page_size")
	if pageSizeStr != "" {
		pageSize, err := strconv.Atoi(pageSizeStr)
		if err == nil && pageSize > 0 && pageSize <= 100 {
			params.PageSize = pageSize
		}
	}

	return params
}
