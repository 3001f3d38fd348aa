// Package tokens signs and verifies the bearer tokens issued at login.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// AuthClaims is the login payload. Expires mirrors exp in epoch
// milliseconds and is what clients read back from the login response.
type AuthClaims struct {
	ID      string `json:"_id"`
	Email   string `json:"email"`
	Expires int64  `json:"expires"`
	jwt.RegisteredClaims
}

func NewAuthClaims(id, email string, now time.Time, ttl time.Duration) *AuthClaims {
	exp := now.Add(ttl)
	return &AuthClaims{
		ID:      id,
		Email:   email,
		Expires: exp.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
}

func SignAuthToken(claims *AuthClaims, secret []byte) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseAuthClaims verifies signature, algorithm and expiry. Every failure
// wraps ErrInvalidToken; expired tokens additionally match jwt.ErrTokenExpired.
func ParseAuthClaims(raw string, secret []byte) (*AuthClaims, error) {
	claims := &AuthClaims{}
	t, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !t.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
