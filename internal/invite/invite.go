// Package invite issues and verifies the signed tokens embedded in
// household invitation links.
package invite

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers expired, tampered, and malformed invite tokens.
var ErrInvalidToken = errors.New("invite: invalid token")

type claims struct {
	Email     string `json:"email"`
	Household string `json:"household"`
	jwt.RegisteredClaims
}

// Signer mints and verifies invite tokens for one household.
type Signer struct {
	secret    []byte
	household string
	ttl       time.Duration
	now       func() time.Time
}

func NewSigner(secret []byte, household string, ttl time.Duration) *Signer {
	return &Signer{
		secret:    secret,
		household: household,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Token mints a signed invite for the given email address.
func (s *Signer) Token(email string) (string, error) {
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email:     email,
		Household: s.household,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign invite: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry and returns the invited
// email address.
func (s *Signer) Verify(token string) (string, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Household != s.household {
		return "", fmt.Errorf("%w: wrong household", ErrInvalidToken)
	}
	return c.Email, nil
}
