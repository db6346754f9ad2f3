package auth_test

import (
	"testing"
	"time"

	"taskManager/internal/auth"
	"taskManager/internal/clock"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_IssueAndVerify(t *testing.T) {
	verifier := auth.NewVerifier("test-secret", nil)

	token, err := verifier.Issue("user-123", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id)
}

func TestVerifier_WithoutExpiry(t *testing.T) {
	verifier := auth.NewVerifier("test-secret", nil)

	token, err := verifier.Issue("user-123", 0)
	require.NoError(t, err)

	id, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id)
}

func TestVerifier_Expired(t *testing.T) {
	issuedAt := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	issuer := auth.NewVerifier("test-secret", clock.Fixed(issuedAt))
	token, err := issuer.Issue("user-123", time.Minute)
	require.NoError(t, err)

	later := auth.NewVerifier("test-secret", clock.Fixed(issuedAt.Add(2*time.Minute)))
	_, err = later.Verify(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestVerifier_WrongSecret(t *testing.T) {
	token, err := auth.NewVerifier("secret-1", nil).Issue("user-123", time.Hour)
	require.NoError(t, err)

	_, err = auth.NewVerifier("secret-2", nil).Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifier_InvalidTokens(t *testing.T) {
	verifier := auth.NewVerifier("test-secret", nil)

	noID := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"})
	noIDToken, err := noID.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	otherAlg := jwt.NewWithClaims(jwt.SigningMethodHS512, auth.Claims{UserID: "user-123"})
	otherAlgToken, err := otherAlg.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"random string", "not.a.valid.token"},
		{"malformed jwt", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid"},
		{"missing id claim", noIDToken},
		{"unexpected algorithm", otherAlgToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}
