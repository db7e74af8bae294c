package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecretKey signs and verifies operator tokens. Set from configuration at
// startup via InitJWT; the fallback value only exists for tests.
var jwtSecretKey = []byte("pharmaledger-dev-jwt-secret")

// AccessTokenTTL is how long an operator token stays valid. Pharmacy shifts
// run long, so this is generous compared to a typical web session.
const AccessTokenTTL = 12 * time.Hour

// InitJWT installs the signing secret. Call once from main before serving.
func InitJWT(secret string) {
	if secret != "" {
		jwtSecretKey = []byte(secret)
	}
}

// Claims defines the JWT claims structure for operator tokens.
type Claims struct {
	OperatorID   int64  `json:"operator_id"`
	OperatorCode string `json:"operator_code"`
	jwt.RegisteredClaims
}

// GenerateAccessToken creates a new JWT for a terminal operator.
func GenerateAccessToken(operatorID int64, operatorCode string) (string, error) {
	expirationTime := time.Now().Add(AccessTokenTTL)
	claims := &Claims{
		OperatorID:   operatorID,
		OperatorCode: operatorCode,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "pharmaledger-backend",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token string.
// It returns the claims if the token is valid, otherwise an error.
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
