package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MonMotDePasseTr0pSûr!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	// Test de la comparaison négative (mauvais mot de passe)
	match, err = ComparePassword("MauvaisMDP", hash)
	req.NoError(err)
	req.False(match)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"alice42", "ComplexPass123!", "cat"}, false},
		{"Username too short", RegisterRequest{"al", "ComplexPass123!", "cat"}, true},
		{"Username not alphanumeric", RegisterRequest{"alice!", "ComplexPass123!", "cat"}, true},
		{"Missing avatar", RegisterRequest{"alice42", "ComplexPass123!", ""}, true},
		{"Password too short", RegisterRequest{"alice42", "Short1!", "cat"}, true},
		{"Missing digit", RegisterRequest{"alice42", "NoDigitPassword!", "cat"}, true},
		{"Missing special char", RegisterRequest{"alice42", "NoSpecialChar123", "cat"}, true},
		{"Missing uppercase", RegisterRequest{"alice42", "nouppercase123!", "cat"}, true},
		{"Password too long (edge case)", RegisterRequest{"alice42", strings.Repeat("a", 73), "cat"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestTokenRoundtrip(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("user-123", "alice", time.Hour)
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := ValidateToken(token)
	req.NoError(err)
	req.Equal("user-123", claims.UserID)
	req.Equal("alice", claims.Username)
	req.Equal("presence-lab", claims.Issuer)
}

func TestExpiredTokenRejected(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("user-123", "alice", -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(token)
	req.Error(err)
}

func TestTamperedTokenRejected(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("user-123", "alice", time.Hour)
	req.NoError(err)

	_, err = ValidateToken(token + "x")
	req.Error(err)
}
