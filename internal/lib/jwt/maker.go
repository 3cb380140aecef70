// Package jwt implements generation and parsing of signed bearer tokens
// with custom claim fields.
//
// Maker defines the interface for issuing and verifying tokens carrying the
// user id and email. MakerImpl is the concrete implementation backed by an
// HMAC secret key and a token lifetime.
package jwt

import (
	"time"
)

// Maker describes the interface for generating and parsing bearer tokens.
type Maker interface {
	// GenerateToken issues a signed token for the given user.
	GenerateToken(userID int, userUID, email string) (string, error)
	// ParseToken verifies a token and returns its claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker using an HMAC secret key and a token TTL.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker creates a MakerImpl from a secret key and token lifetime.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
