package services

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satonic/payperview-api/internal/models"
)

func newTestKey(t *testing.T) (*btcec.PrivateKey, string) {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return priv, hex.EncodeToString(priv.PubKey().SerializeCompressed())
}

func signSchnorr(t *testing.T, priv *btcec.PrivateKey, message string) string {
	t.Helper()
	sig, err := schnorr.Sign(priv, chainhash.HashB([]byte(message)))
	require.NoError(t, err)
	return hex.EncodeToString(sig.Serialize())
}

func signECDSA(priv *btcec.PrivateKey, message string) string {
	sig := ecdsa.Sign(priv, chainhash.HashB([]byte(message)))
	return hex.EncodeToString(sig.Serialize())
}

func TestWalletService_AddressFromPublicKey(t *testing.T) {
	ws := NewWalletService()
	_, pub := newTestKey(t)

	address, err := ws.AddressFromPublicKey(pub)
	require.NoError(t, err)
	parsed, err := ParseAddress(address)
	require.NoError(t, err)
	assert.Equal(t, address, parsed)

	again, err := ws.AddressFromPublicKey(pub)
	require.NoError(t, err)
	assert.Equal(t, address, again)

	_, err = ws.AddressFromPublicKey("not-hex")
	assert.Error(t, err)
	_, err = ws.AddressFromPublicKey("02abcd")
	assert.Error(t, err)
}

func TestWalletService_VerifySignature(t *testing.T) {
	ws := NewWalletService()
	priv, pub := newTestKey(t)
	address, err := ws.AddressFromPublicKey(pub)
	require.NoError(t, err)
	message := ws.GenerateMessageToSign(address)

	tests := []struct {
		name string
		sig  string
	}{
		{"schnorr", signSchnorr(t, priv, message)},
		{"ecdsa", signECDSA(priv, message)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ws.VerifySignature(pub, message, tt.sig)
			require.NoError(t, err)
			assert.Equal(t, address, got)

			_, err = ws.VerifySignature(pub, message+" tampered", tt.sig)
			assert.Error(t, err)
		})
	}
}

func TestWalletService_VerifySignature_WrongKey(t *testing.T) {
	ws := NewWalletService()
	priv, _ := newTestKey(t)
	_, otherPub := newTestKey(t)

	sig := signSchnorr(t, priv, "hello")
	_, err := ws.VerifySignature(otherPub, "hello", sig)
	assert.Error(t, err)

	_, err = ws.VerifySignature(otherPub, "hello", "zz")
	assert.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	address, err := ParseAddress("0x00112233445566778899aabbccddeeff00112233")
	require.NoError(t, err)
	assert.Equal(t, "0x00112233445566778899aabbccddeeff00112233", address)

	address, err = ParseAddress(" 0X00112233445566778899AABBCCDDEEFF00112233 ")
	require.NoError(t, err)
	assert.Equal(t, "0x00112233445566778899aabbccddeeff00112233", address)

	for _, bad := range []string{
		"",
		"00112233445566778899aabbccddeeff00112233",
		"0x0011",
		"0xzz112233445566778899aabbccddeeff00112233",
		"addr2",
	} {
		_, err := ParseAddress(bad)
		assert.ErrorIs(t, err, models.ErrValidation, bad)
	}
}
