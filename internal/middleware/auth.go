package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dealerops/internal/model"
	"dealerops/pkg/database"
	"dealerops/pkg/jwtutil"
	"dealerops/pkg/logger"
	"dealerops/prometheus"
)

// AuthMiddleware validates the JWT token from the Authorization header
// and loads the authenticated user into the request context.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		tokenString, err := bearerToken(c)
		if err != nil {
			log.Error("Missing or malformed Authorization header", zap.Error(err))
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing or malformed authorization token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Load the user so handlers see current flags (active, system admin),
		// not the ones frozen into the token at issue time.
		var user model.User
		result := database.GetDB().First(&user, claims.UserID)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) || (result.Error == nil && !user.Active) {
			log.Error("Token references missing or inactive user", zap.Uint("user_id", claims.UserID))
			prometheus.RecordAuthError("inactive_user")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}
		if result.Error != nil {
			log.Error("Failed to load user", zap.Error(result.Error))
			prometheus.RecordAuthError("db_error")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}

		// Store user info in context for later use
		c.Set("user", &user)
		c.Set("user_id", user.ID)
		c.Set("email", user.Email)

		// Store tenant information if available
		if claims.TenantID != nil {
			c.Set("tenant_id", *claims.TenantID)
			c.Set("tenant_name", claims.TenantName)
			c.Set("user_role", claims.Role)
		}

		// Token is valid, proceed with the request
		return next(c)
	}
}

// KioskMiddleware validates the short-lived kiosk session token and
// stores its tenant in the context. It never resolves a user identity.
func KioskMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		tokenString, err := bearerToken(c)
		if err != nil {
			log.Error("Missing kiosk session token", zap.Error(err))
			prometheus.RecordAuthError("missing_kiosk_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing or malformed session token"})
		}

		claims, err := jwtutil.ValidateKioskToken(tokenString)
		if err != nil {
			log.Error("Invalid kiosk session token", zap.Error(err))
			prometheus.RecordAuthError("invalid_kiosk_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired session token"})
		}

		c.Set("kiosk_tenant_id", claims.TenantID)
		return next(c)
	}
}

// CurrentUser returns the authenticated user placed in the context by
// AuthMiddleware.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get("user").(*model.User)
	return user, ok
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid Authorization header format")
	}
	return parts[1], nil
}
