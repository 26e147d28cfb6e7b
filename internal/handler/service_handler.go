package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dealerops/internal/middleware"
	"dealerops/pkg/logger"
	"dealerops/prometheus"
)

// ListServices lists the services visible to the user in a tenant's
// catalog, gated by the modules the tenant has enabled.
func ListServices(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	tenantID, err := strconv.ParseUint(c.QueryParam("tenant_id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant_id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	services, member, err := resolver.VisibleServices(user, uint(tenantID))
	if err != nil {
		log.Error("Failed to list services", zap.Error(err))
		return respondError(c, err)
	}
	if !member {
		return deny(c)
	}
	prometheus.RecordAuthzDecision(true)

	return c.JSON(http.StatusOK, services)
}
