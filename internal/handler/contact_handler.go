package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dealerops/internal/authz"
	"dealerops/internal/middleware"
	"dealerops/internal/model"
	"dealerops/pkg/database"
	"dealerops/pkg/logger"
	"dealerops/prometheus"
)

// CreateContact inserts a dealership contact through the invariant
// pipeline; writing a primary contact demotes the previous one.
func CreateContact(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		TenantID  uint   `json:"tenant_id"`
		Name      string `json:"name"`
		Email     string `json:"email,omitempty"`
		Phone     string `json:"phone,omitempty"`
		IsPrimary bool   `json:"is_primary,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse contact request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.TenantID == 0 || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id and name are required"})
	}

	allowed, err := resolver.CanMutate(user, req.TenantID, model.ModuleContacts, authz.OpInsert)
	if err != nil {
		return respondError(c, err)
	}
	if !allowed {
		log.Warn("Unauthorized contact creation attempt",
			zap.Uint("user_id", user.ID),
			zap.Uint("tenant_id", req.TenantID))
		return deny(c)
	}
	prometheus.RecordAuthzDecision(true)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	contact, err := pipeline.CreateContact(&model.Contact{
		TenantID:  req.TenantID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		IsPrimary: req.IsPrimary,
		Active:    true,
	})
	if err != nil {
		log.Error("Failed to create contact", zap.Error(err))
		return respondError(c, err)
	}

	log.Info("Contact created",
		zap.Uint("tenant_id", contact.TenantID),
		zap.Uint("contact_id", contact.ID),
		zap.Bool("is_primary", contact.IsPrimary))

	return c.JSON(http.StatusCreated, contact)
}

// UpdateContact saves contact changes through the invariant pipeline.
func UpdateContact(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contact ID"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var contact model.Contact
	if result := database.GetDB().First(&contact, id); result.Error != nil {
		// Out-of-scope and missing rows answer the same way.
		return deny(c)
	}

	allowed, err := resolver.CanMutate(user, contact.TenantID, model.ModuleContacts, authz.OpUpdate)
	if err != nil {
		return respondError(c, err)
	}
	if !allowed {
		return deny(c)
	}
	prometheus.RecordAuthzDecision(true)

	var req struct {
		Name      *string `json:"name,omitempty"`
		Email     *string `json:"email,omitempty"`
		Phone     *string `json:"phone,omitempty"`
		IsPrimary *bool   `json:"is_primary,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name != nil {
		contact.Name = *req.Name
	}
	if req.Email != nil {
		contact.Email = *req.Email
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.IsPrimary != nil {
		contact.IsPrimary = *req.IsPrimary
	}

	updated, err := pipeline.UpdateContact(&contact)
	if err != nil {
		log.Error("Failed to update contact", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

// ListContacts lists a tenant's contacts for its members
func ListContacts(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	tenantID, err := strconv.ParseUint(c.QueryParam("tenant_id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant_id"})
	}

	allowed, err := resolver.Allow(user, uint(tenantID), model.ModuleContacts, authz.LevelRead)
	if err != nil {
		return respondError(c, err)
	}
	if !allowed {
		return deny(c)
	}
	prometheus.RecordAuthzDecision(true)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var contacts []model.Contact
	if result := database.GetDB().Where("tenant_id = ? AND active = ?", tenantID, true).Order("name").Find(&contacts); result.Error != nil {
		return respondError(c, result.Error)
	}
	return c.JSON(http.StatusOK, contacts)
}
