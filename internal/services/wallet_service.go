package services

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/satonic/payperview-api/internal/models"
)

// addressLength is the number of hash bytes kept in an address
const addressLength = 20

// WalletService handles wallet operations
type WalletService struct{}

// NewWalletService creates a new WalletService
func NewWalletService() *WalletService {
	return &WalletService{}
}

// AddressFromPublicKey derives the address of a hex-encoded secp256k1 public key:
// "0x" followed by the last 20 bytes of sha256 over the compressed key.
func (s *WalletService) AddressFromPublicKey(publicKey string) (string, error) {
	pubKey, err := parsePublicKey(publicKey)
	if err != nil {
		return "", err
	}
	return addressOf(pubKey), nil
}

func addressOf(pubKey *btcec.PublicKey) string {
	digest := chainhash.HashB(pubKey.SerializeCompressed())
	return "0x" + hex.EncodeToString(digest[len(digest)-addressLength:])
}

func parsePublicKey(publicKey string) (*btcec.PublicKey, error) {
	keyBytes, err := hex.DecodeString(publicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid public key format: %w", err)
	}
	pubKey, err := btcec.ParsePubKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return pubKey, nil
}

// VerifySignature checks a hex signature of message by publicKey and returns the signer's address.
// 64-byte signatures are Schnorr (BIP-340); anything else is parsed as DER-encoded ECDSA.
func (s *WalletService) VerifySignature(publicKey, message, signature string) (string, error) {
	pubKey, err := parsePublicKey(publicKey)
	if err != nil {
		return "", err
	}

	sigBytes, err := hex.DecodeString(signature)
	if err != nil {
		return "", fmt.Errorf("invalid signature format: %w", err)
	}

	msgHash := chainhash.HashB([]byte(message))

	var valid bool
	if len(sigBytes) == schnorr.SignatureSize {
		sig, err := schnorr.ParseSignature(sigBytes)
		if err != nil {
			return "", fmt.Errorf("failed to parse Schnorr signature: %w", err)
		}
		valid = sig.Verify(msgHash, pubKey)
	} else {
		sig, err := ecdsa.ParseDERSignature(sigBytes)
		if err != nil {
			return "", fmt.Errorf("failed to parse ECDSA signature: %w", err)
		}
		valid = sig.Verify(msgHash, pubKey)
	}

	if !valid {
		return "", fmt.Errorf("signature does not match public key")
	}
	return addressOf(pubKey), nil
}

// GenerateMessageToSign generates a message for wallet signature
func (s *WalletService) GenerateMessageToSign(address string) string {
	return fmt.Sprintf("Sign this message to authenticate with PayPerView: %s", address)
}

// CanonicalAddress trims and lowercases an address so every lookup keys on one spelling
func CanonicalAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// ParseAddress returns the canonical form of a "0x" + 40 hex digit address
func ParseAddress(address string) (string, error) {
	canonical := CanonicalAddress(address)
	if !strings.HasPrefix(canonical, "0x") || len(canonical) != 2+2*addressLength {
		return "", fmt.Errorf("%w: %q is not a 0x-prefixed %d-byte hex address", models.ErrValidation, address, addressLength)
	}
	if _, err := hex.DecodeString(canonical[2:]); err != nil {
		return "", fmt.Errorf("%w: %q is not a 0x-prefixed %d-byte hex address", models.ErrValidation, address, addressLength)
	}
	return canonical, nil
}
