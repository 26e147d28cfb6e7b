package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dealerops/internal/authz"
	"dealerops/internal/middleware"
	"dealerops/internal/model"
	"dealerops/pkg/jwtutil"
	"dealerops/pkg/logger"
	"dealerops/prometheus"
)

// CreateKioskSession issues a short-lived kiosk session token for a
// tenant. Requires write level on the time-tracking module; the token
// itself carries no user identity.
func CreateKioskSession(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		TenantID uint `json:"tenant_id"`
	}
	if err := c.Bind(&req); err != nil || req.TenantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
	}

	allowed, err := resolver.Allow(user, req.TenantID, model.ModuleTimeTracking, authz.LevelWrite)
	if err != nil {
		return respondError(c, err)
	}
	if !allowed {
		log.Warn("Unauthorized kiosk session attempt",
			zap.Uint("user_id", user.ID),
			zap.Uint("tenant_id", req.TenantID))
		return deny(c)
	}
	prometheus.RecordAuthzDecision(true)

	token, err := jwtutil.GenerateKioskToken(req.TenantID)
	if err != nil {
		log.Error("Failed to generate kiosk token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("Kiosk session issued", zap.Uint("tenant_id", req.TenantID))
	return c.JSON(http.StatusCreated, echo.Map{"token": token})
}

// ListKioskEmployees serves the kiosk clock-in screen: active
// employees only, basic fields only. Authenticated by the kiosk
// session token, not a user token.
func ListKioskEmployees(c echo.Context) error {
	log := logger.FromContext(c)

	tenantID, ok := c.Get("kiosk_tenant_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	employees, err := verifier.ListActiveEmployeesBasic(tenantID)
	if err != nil {
		log.Error("Failed to list kiosk employees", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, employees)
}
