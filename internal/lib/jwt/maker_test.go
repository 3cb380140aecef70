package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	tokenTTL := 30 * 24 * time.Hour
	maker := NewJWTMaker(secretKey, tokenTTL)

	tests := []struct {
		name    string
		userID  int
		userUID string
		email   string
	}{
		{
			name:    "regular user",
			userID:  1,
			userUID: "550e8400-e29b-41d4-a716-446655440000",
			email:   "user@example.com",
		},
		{
			name:    "user with plus address",
			userID:  42,
			userUID: "6fa459ea-ee8a-3ca4-894e-db77e160355e",
			email:   "user+books@example.co.jp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.userID, tt.userUID, tt.email)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.userUID, claims.UserUID)
			assert.Equal(t, tt.email, claims.Email)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	maker := NewJWTMaker("test_secret_key_1234567890", time.Minute)

	tests := []struct {
		name  string
		token func() string
	}{
		{
			name:  "garbage string",
			token: func() string { return "not.a.token" },
		},
		{
			name: "wrong secret",
			token: func() string {
				other := NewJWTMaker("another_secret_key", time.Minute)
				tok, err := other.GenerateToken(1, "550e8400-e29b-41d4-a716-446655440000", "user@example.com")
				require.NoError(t, err)
				return tok
			},
		},
		{
			name: "expired token",
			token: func() string {
				expired := NewJWTMaker("test_secret_key_1234567890", -time.Minute)
				tok, err := expired.GenerateToken(1, "550e8400-e29b-41d4-a716-446655440000", "user@example.com")
				require.NoError(t, err)
				return tok
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token())
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}
