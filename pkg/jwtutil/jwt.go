package jwtutil

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"dealerops/pkg/config"
)

var (
	signingKey      []byte
	expiration      time.Duration
	kioskExpiration time.Duration
)

// Initialize configures the JWT utility from application config
func Initialize(cfg *config.JWTConfig) {
	signingKey = []byte(cfg.SigningKey)
	expiration = time.Duration(cfg.ExpirationHours) * time.Hour
	kioskExpiration = time.Duration(cfg.KioskSessionMinutes) * time.Minute
}

// UserClaims represents the JWT claims for user authentication
type UserClaims struct {
	Email      string `json:"email"`
	UserID     uint   `json:"user_id"`
	TenantID   *uint  `json:"tenant_id,omitempty"`   // Current tenant context
	TenantName string `json:"tenant_name,omitempty"` // Tenant name for convenience
	Role       string `json:"role,omitempty"`        // User's role in the current tenant
	jwt.RegisteredClaims
}

// KioskClaims represents the short-lived kiosk session token.
// It carries a tenant only, never a user identity.
type KioskClaims struct {
	TenantID uint   `json:"tenant_id"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

// KioskScope is the only scope a kiosk session token may carry
const KioskScope = "kiosk"

// GenerateToken creates a JWT token with user information
func GenerateToken(email string, userID uint) (string, error) {
	return GenerateTokenWithTenant(email, userID, nil, "", "")
}

// GenerateTokenWithTenant creates a JWT token with user and tenant information
func GenerateTokenWithTenant(email string, userID uint, tenantID *uint, tenantName string, role string) (string, error) {
	claims := UserClaims{
		Email:      email,
		UserID:     userID,
		TenantID:   tenantID,
		TenantName: tenantName,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// GenerateKioskToken creates a short-lived session token for the kiosk flow
func GenerateKioskToken(tenantID uint) (string, error) {
	claims := KioskClaims{
		TenantID: tenantID,
		Scope:    KioskScope,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(kioskExpiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

// ValidateKioskToken validates and parses a kiosk session token
func ValidateKioskToken(tokenString string) (*KioskClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &KioskClaims{}, func(token *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*KioskClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.Scope != KioskScope {
		return nil, errors.New("token is not a kiosk session token")
	}
	return claims, nil
}
