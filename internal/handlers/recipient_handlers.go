package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satonic/payperview-api/internal/services"
)

// GetRedeemableTokens handles listing the assets that pay royalties to an address
func GetRedeemableTokens(catalog *services.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address, err := services.ParseAddress(chi.URLParam(r, "address"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"address":   address,
			"asset_ids": catalog.TokenIDsAddressCanRedeemFrom(address),
		})
	}
}

// GetBalance handles retrieving the amount credited to a royalty recipient
func GetBalance(catalog *services.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address, err := services.ParseAddress(chi.URLParam(r, "address"))
		if err != nil {
			writeError(w, err)
			return
		}

		balance, err := catalog.Balance(r.Context(), address)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, balance)
	}
}

// GetOraclePrice handles retrieving the latest raw exchange rate
func GetOraclePrice(catalog *services.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		price, err := catalog.LatestPrice(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]int64{
			"price": price,
		})
	}
}
