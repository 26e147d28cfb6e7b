package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dealerops/internal/apperr"
	"dealerops/internal/authz"
	"dealerops/internal/middleware"
	"dealerops/internal/model"
	"dealerops/pkg/logger"
	"dealerops/prometheus"
)

// ResolveInvitation is the public token lookup. It bypasses the
// permission resolver: the token itself is the credential. Any miss is
// a plain 404 so callers cannot probe for expired-but-existing tokens.
func ResolveInvitation(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	view, err := verifier.ResolveInvitation(c.Param("token"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			prometheus.RecordInvitationLookup(false)
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		log.Error("Invitation lookup failed", zap.Error(err))
		return respondError(c, err)
	}

	prometheus.RecordInvitationLookup(true)
	return c.JSON(http.StatusOK, view)
}

// CreateInvitation issues an invitation into the caller's tenant.
// Requires admin level on the employees module.
func CreateInvitation(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		TenantID uint   `json:"tenant_id"`
		Email    string `json:"email"`
		Role     string `json:"role,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse invitation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.TenantID == 0 || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id and email are required"})
	}
	if req.Role == "" {
		req.Role = "member"
	}

	allowed, err := resolver.Allow(user, req.TenantID, model.ModuleEmployees, authz.LevelAdmin)
	if err != nil {
		return respondError(c, err)
	}
	if !allowed {
		log.Warn("Unauthorized invitation attempt",
			zap.Uint("user_id", user.ID),
			zap.Uint("tenant_id", req.TenantID))
		return deny(c)
	}
	prometheus.RecordAuthzDecision(true)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	inv, err := verifier.CreateInvitation(req.TenantID, req.Email, req.Role, user.ID, inviteTTL)
	if err != nil {
		log.Error("Failed to create invitation", zap.Error(err))
		return respondError(c, err)
	}

	log.Info("Invitation created",
		zap.Uint("tenant_id", inv.TenantID),
		zap.String("email", inv.Email),
		zap.String("role", inv.Role))

	// The token is returned once, to the inviter, for delivery.
	return c.JSON(http.StatusCreated, echo.Map{
		"invitation": inv,
		"token":      inv.Token,
	})
}

// AcceptInvitation admits the authenticated user into the inviting
// tenant. The membership insert runs through the invariant pipeline,
// so the tenant's user limit applies.
func AcceptInvitation(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	membership, err := verifier.AcceptInvitation(req.Token, user.ID, pipeline)
	if err != nil {
		log.Error("Failed to accept invitation", zap.Error(err))
		return respondError(c, err)
	}

	log.Info("Invitation accepted",
		zap.Uint("user_id", user.ID),
		zap.Uint("tenant_id", membership.TenantID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "Invitation accepted",
		"membership": membership,
	})
}
