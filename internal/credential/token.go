package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/nhle/taskboard/internal/model"
)

// IssueToken signs an HS256 session token for p. It is used by the
// reference API and the `token` command for local development.
func IssueToken(secret []byte, p model.Principal, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("issuing token: empty signing secret")
	}
	now := time.Now()
	claims := Claims{
		Name:  p.Name,
		Email: p.Email,
		Role:  p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks the HS256 signature and expiry of token and returns
// its claims.
func VerifyToken(secret []byte, token string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("verifying token: empty signing secret")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("verifying token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("verifying token: missing subject")
	}
	return claims, nil
}
