// Package auth mints and verifies the signed session tokens.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tijori/tijori/internal/common"
)

// Claims carries the session identity on top of the registered claims.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

var signingMethod = jwt.SigningMethodHS256

// GenerateToken signs a token for the user valid for validityDuration and
// returns it with its expiry.
func GenerateToken(userID, email string, secretKey []byte, validityDuration time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(validityDuration)

	token := jwt.NewWithClaims(signingMethod, Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseToken verifies signature and claims. A correctly signed token past
// its expiry yields common.ErrTokenExpired; any other failure yields
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc(secretKey),
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// ParseExpired re-reads a token that failed only on expiry. The signature
// is still verified; time-based claims are not.
func ParseExpired(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc(secretKey),
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !token.Valid || claims.UserID == "" || claims.ExpiresAt == nil {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

func keyFunc(secretKey []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}
}
