package models

import (
	"time"
)

// AuthToken represents the authentication token response
type AuthToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Address   string    `json:"address"`
}

// WalletAuthRequest represents a request to authenticate with a wallet.
// PublicKey is a hex-encoded compressed secp256k1 key and Signature signs Message with it.
type WalletAuthRequest struct {
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
	Message   string `json:"message"`
}

// Challenge is the message a wallet signs to log in
type Challenge struct {
	Address string `json:"address"`
	Message string `json:"message"`
}
