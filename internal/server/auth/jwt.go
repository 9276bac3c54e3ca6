// Package auth issues and verifies the bearer tokens that name the store
// user a request acts for.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims plus the store user.
type Claims struct {
	jwt.RegisteredClaims
	User string `json:"user"`
}

// GenerateToken signs an HS256 token for user that expires after validity.
func GenerateToken(user string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		User: user,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserFromToken verifies tokenString and returns the user it names.
// Expired tokens fail with common.ErrTokenExpired, anything else that does
// not verify fails with common.ErrInvalidToken.
func GetUserFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.User == "" {
		return "", common.ErrInvalidToken
	}

	return claims.User, nil
}
