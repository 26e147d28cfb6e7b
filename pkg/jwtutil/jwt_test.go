package jwtutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealerops/pkg/config"
)

func initTestKeys(t *testing.T) {
	t.Helper()
	Initialize(&config.JWTConfig{
		SigningKey:          "test-signing-key",
		ExpirationHours:     1,
		KioskSessionMinutes: 15,
	})
}

func TestUserTokenRoundTrip(t *testing.T) {
	initTestKeys(t)

	tenantID := uint(7)
	token, err := GenerateTokenWithTenant("anna@example.com", 42, &tenantID, "Autohaus Nord", "manager")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", claims.Email)
	assert.EqualValues(t, 42, claims.UserID)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, tenantID, *claims.TenantID)
	assert.Equal(t, "manager", claims.Role)
}

func TestKioskTokenRoundTrip(t *testing.T) {
	initTestKeys(t)

	token, err := GenerateKioskToken(7)
	require.NoError(t, err)

	claims, err := ValidateKioskToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.TenantID)
	assert.Equal(t, KioskScope, claims.Scope)
}

func TestValidateKioskToken_RejectsUserToken(t *testing.T) {
	initTestKeys(t)

	// A full user token must never pass as a kiosk session token:
	// its claims carry no kiosk scope.
	token, err := GenerateToken("anna@example.com", 42)
	require.NoError(t, err)

	_, err = ValidateKioskToken(token)
	assert.Error(t, err)
}

func TestValidateToken_RejectsTamperedSignature(t *testing.T) {
	initTestKeys(t)

	token, err := GenerateToken("anna@example.com", 42)
	require.NoError(t, err)

	Initialize(&config.JWTConfig{
		SigningKey:          "another-key",
		ExpirationHours:     1,
		KioskSessionMinutes: 15,
	})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}
