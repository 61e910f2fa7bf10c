package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/medibook/config"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
)

func newTestManager() *JWTManager {
	return NewJWTManager(config.JWTConfig{
		Secret:         "test-secret-test-secret-test-secret",
		AccessTokenTTL: time.Hour,
		Issuer:         "medibook-test",
	})
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newTestManager()
	claims := &domain.Claims{UserID: uuid.New(), Username: "drsmith", Role: domain.RoleDoctor}

	tok, err := m.GenerateAccessToken(claims)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.NotEmpty(t, tok.AccessToken)

	got, err := m.ValidateAccessToken(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, claims, got)
}

func TestJWTManager_Expired(t *testing.T) {
	m := newTestManager()
	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }

	tok, err := m.GenerateAccessToken(&domain.Claims{UserID: uuid.New(), Role: domain.RolePatient})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateAccessToken(tok.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	tok, err := newTestManager().GenerateAccessToken(&domain.Claims{UserID: uuid.New(), Role: domain.RoleAdmin})
	require.NoError(t, err)

	other := NewJWTManager(config.JWTConfig{Secret: "another-secret", AccessTokenTTL: time.Hour, Issuer: "medibook-test"})
	_, err = other.ValidateAccessToken(tok.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTManager_Garbage(t *testing.T) {
	_, err := newTestManager().ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
