package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/satonic/payperview-api/internal/models"
	"github.com/satonic/payperview-api/internal/services"
)

// Challenge handles retrieving the message a wallet must sign
func Challenge(authService *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		publicKey := r.URL.Query().Get("public_key")
		if publicKey == "" {
			http.Error(w, "public_key is required", http.StatusBadRequest)
			return
		}

		challenge, err := authService.Challenge(publicKey)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, challenge)
	}
}

// WalletLogin handles wallet authentication
func WalletLogin(authService *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.WalletAuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		// Authenticate with wallet
		token, err := authService.AuthenticateWithWallet(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		writeJSON(w, http.StatusOK, token)
	}
}

// AuthMiddleware is a middleware for authenticating requests
func AuthMiddleware(authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			address, err := authService.ValidateToken(parts[1])
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := NewContextWithAddress(r.Context(), address)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
