package middleware

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dropforge/pkg/domain"
)

// JWTValidator validates bearer tokens and extracts the caller's account.
type JWTValidator interface {
	ValidateToken(tokenString string) (domain.Account, error)
}

type accountClaims struct {
	Account string `json:"account"`
	jwt.RegisteredClaims
}

// HMACValidator validates and issues HS256 tokens carrying an account claim.
type HMACValidator struct {
	key []byte
}

func NewHMACValidator(signingKey string) *HMACValidator {
	return &HMACValidator{key: []byte(signingKey)}
}

func (v *HMACValidator) ValidateToken(tokenString string) (domain.Account, error) {
	var claims accountClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		return domain.ZeroAccount, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return domain.ZeroAccount, fmt.Errorf("invalid token")
	}
	account, err := domain.ParseAccount(claims.Account)
	if err != nil {
		return domain.ZeroAccount, fmt.Errorf("account claim: %w", err)
	}
	return account, nil
}

// IssueToken mints a token for an account. Used by tests and dev tooling;
// production callers bring their own issuer.
func (v *HMACValidator) IssueToken(account domain.Account, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := accountClaims{
		Account: account.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.key)
}
