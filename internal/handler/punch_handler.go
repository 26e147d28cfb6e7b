package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dealerops/internal/authz"
	"dealerops/internal/middleware"
	"dealerops/internal/model"
	"dealerops/pkg/logger"
	"dealerops/prometheus"
)

// ClockIn opens a clock session for the authenticated user in a tenant
// they belong to. A second clock-in without clocking out conflicts.
func ClockIn(c echo.Context) error {
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

	allowed, err := resolver.Allow(user, req.TenantID, model.ModuleTimeTracking, authz.LevelRead)
	if err != nil {
		return respondError(c, err)
	}
	if !allowed {
		log.Warn("Unauthorized clock-in attempt",
			zap.Uint("user_id", user.ID),
			zap.Uint("tenant_id", req.TenantID))
		return deny(c)
	}
	prometheus.RecordAuthzDecision(true)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	record, err := machine.ClockIn(user.ID, req.TenantID)
	if err != nil {
		log.Error("Clock-in failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return respondError(c, err)
	}

	prometheus.RecordPunchTransition("clock_in")
	prometheus.OpenPunchGauge.Inc()
	log.Info("Employee clocked in",
		zap.Uint("user_id", user.ID),
		zap.Uint("record_id", record.ID))

	return c.JSON(http.StatusCreated, record)
}

// ClockOut closes the authenticated user's open clock session.
func ClockOut(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	record, err := machine.ClockOut(user.ID, model.PunchOutManual)
	if err != nil {
		log.Error("Clock-out failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return respondError(c, err)
	}

	prometheus.RecordPunchTransition("clock_out")
	prometheus.OpenPunchGauge.Dec()
	log.Info("Employee clocked out",
		zap.Uint("user_id", user.ID),
		zap.Uint("record_id", record.ID))

	return c.JSON(http.StatusOK, record)
}
