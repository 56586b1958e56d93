package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/satonic/payperview-api/internal/config"
	"github.com/satonic/payperview-api/internal/models"
)

// Claims represents the JWT claims
type Claims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

// AuthService handles authentication operations
type AuthService struct {
	walletService *WalletService
	cfg           config.AuthConfig
}

// NewAuthService creates a new AuthService
func NewAuthService(walletService *WalletService, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		walletService: walletService,
		cfg:           cfg,
	}
}

// Challenge returns the message the holder of publicKey must sign
func (s *AuthService) Challenge(publicKey string) (*models.Challenge, error) {
	address, err := s.walletService.AddressFromPublicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	return &models.Challenge{
		Address: address,
		Message: s.walletService.GenerateMessageToSign(address),
	}, nil
}

// AuthenticateWithWallet authenticates a wallet by its signature over the challenge message
func (s *AuthService) AuthenticateWithWallet(req models.WalletAuthRequest) (*models.AuthToken, error) {
	address, err := s.walletService.VerifySignature(req.PublicKey, req.Message, req.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: signature verification failed: %v", models.ErrUnauthorized, err)
	}

	if req.Message != s.walletService.GenerateMessageToSign(address) {
		return nil, fmt.Errorf("%w: unexpected message", models.ErrUnauthorized)
	}

	token, expiresAt, err := s.generateToken(address)
	if err != nil {
		return nil, err
	}

	return &models.AuthToken{
		Token:     token,
		ExpiresAt: expiresAt,
		Address:   address,
	}, nil
}

// ValidateToken validates a JWT token and returns the wallet address it was issued to
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Check the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	return claims.Address, nil
}

// generateToken generates a JWT token for a wallet address
func (s *AuthService) generateToken(address string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.cfg.JWTExpiration) * time.Hour)

	claims := &Claims{
		Address: address,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "payperview-api",
			Subject:   address,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}
