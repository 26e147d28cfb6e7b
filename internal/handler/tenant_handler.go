package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dealerops/internal/middleware"
	"dealerops/internal/model"
	"dealerops/pkg/database"
	"dealerops/pkg/jwtutil"
	"dealerops/pkg/logger"
	"dealerops/prometheus"
)

// CreateTenant handles dealership creation. The creating user becomes
// the owner; the owner membership is written in the same transaction.
func CreateTenant(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		log.Error("Failed to get user from context")
		prometheus.RecordAuthError("unauthorized_tenant_creation")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	// Parse request
	var req struct {
		Name     string `json:"name"`
		MaxUsers int    `json:"max_users,omitempty"`
		Settings string `json:"settings,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		log.Error("Invalid tenant data", zap.String("name", req.Name))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.MaxUsers <= 0 {
		req.MaxUsers = 10
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("insert")(time.Now())

	// Begin transaction
	tx := database.GetDB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	tenant := model.Tenant{
		Name:     req.Name,
		MaxUsers: req.MaxUsers,
		Settings: req.Settings,
		Active:   true,
	}

	if result := tx.Create(&tenant); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create tenant", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant creation failed"})
	}

	// The owner membership always fits: the tenant is empty.
	membership := model.Membership{
		UserID:   user.ID,
		TenantID: tenant.ID,
		Role:     "owner",
		Active:   true,
	}

	if result := tx.Create(&membership); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create owner membership", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant association failed"})
	}

	// Commit transaction
	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction commit failed"})
	}

	log.Info("Tenant created",
		zap.String("name", tenant.Name),
		zap.Uint("id", tenant.ID),
		zap.Uint("owner_id", user.ID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Tenant created successfully",
		"tenant":  tenant,
	})
}

// GetTenant retrieves tenant details for members
func GetTenant(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	// Get ID from path parameter
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid tenant ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	// The scope check runs before the load so a non-member learns
	// nothing about whether the tenant exists.
	inScope, err := resolver.InScope(user, uint(id))
	if err != nil {
		log.Error("Scope check failed", zap.Error(err))
		return respondError(c, err)
	}
	if !inScope {
		log.Warn("Unauthorized tenant access attempt",
			zap.Uint("requesting_user_id", user.ID),
			zap.Uint64("tenant_id", id))
		return deny(c)
	}
	prometheus.RecordAuthzDecision(true)

	var tenant model.Tenant
	if result := database.GetDB().First(&tenant, id); result.Error != nil {
		return respondError(c, result.Error)
	}

	return c.JSON(http.StatusOK, tenant)
}

// ListUserTenants retrieves all tenants associated with the authenticated user
func ListUserTenants(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	var memberships []model.Membership
	if result := database.GetDB().Preload("Tenant").Where("user_id = ? AND active = ?", user.ID, true).Find(&memberships); result.Error != nil {
		log.Error("Failed to retrieve user's tenants", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tenants"})
	}

	// Format response
	type TenantResponse struct {
		ID        uint      `json:"id"`
		Name      string    `json:"name"`
		Role      string    `json:"role"`
		CreatedAt time.Time `json:"created_at"`
	}

	response := make([]TenantResponse, 0, len(memberships))
	for _, m := range memberships {
		response = append(response, TenantResponse{
			ID:        m.TenantID,
			Name:      m.Tenant.Name,
			Role:      m.Role,
			CreatedAt: m.Tenant.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, response)
}

// SwitchTenant generates a new token with a different tenant context
func SwitchTenant(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	// Parse request
	var req struct {
		TenantID uint `json:"tenant_id"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant switch request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.TenantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	var membership model.Membership
	result := database.GetDB().Where("user_id = ? AND tenant_id = ? AND active = ?", user.ID, req.TenantID, true).First(&membership)
	if result.Error != nil {
		log.Warn("Unauthorized tenant switch attempt",
			zap.Uint("user_id", user.ID),
			zap.Uint("tenant_id", req.TenantID))
		return deny(c)
	}

	var tenant model.Tenant
	if result := database.GetDB().Select("name").First(&tenant, req.TenantID); result.Error != nil {
		return respondError(c, result.Error)
	}

	tenantID := req.TenantID
	token, err := jwtutil.GenerateTokenWithTenant(user.Email, user.ID, &tenantID, tenant.Name, membership.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User switched tenant",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID),
		zap.Uint("tenant_id", req.TenantID))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"tenant": map[string]interface{}{
			"id":   tenant.ID,
			"name": tenant.Name,
			"role": membership.Role,
		},
	})
}
