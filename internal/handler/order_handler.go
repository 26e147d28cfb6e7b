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

// CreateOrder inserts a work order through the invariant pipeline:
// due-date validation plus auto-follow derivation.
func CreateOrder(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		TenantID uint       `json:"tenant_id"`
		Module   string     `json:"module"`
		Title    string     `json:"title"`
		Notes    string     `json:"notes,omitempty"`
		DueDate  *time.Time `json:"due_date,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse order request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.TenantID == 0 || req.Module == "" || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id, module and title are required"})
	}

	allowed, err := resolver.CanMutate(user, req.TenantID, req.Module, authz.OpInsert)
	if err != nil {
		return respondError(c, err)
	}
	if !allowed {
		log.Warn("Unauthorized order creation attempt",
			zap.Uint("user_id", user.ID),
			zap.Uint("tenant_id", req.TenantID))
		return deny(c)
	}
	prometheus.RecordAuthzDecision(true)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	order, err := pipeline.CreateOrder(&model.Order{
		TenantID:  req.TenantID,
		Module:    req.Module,
		Title:     req.Title,
		Notes:     req.Notes,
		DueDate:   req.DueDate,
		CreatedBy: user.ID,
	})
	if err != nil {
		log.Error("Failed to create order", zap.Error(err))
		return respondError(c, err)
	}

	log.Info("Order created",
		zap.Uint("tenant_id", order.TenantID),
		zap.Uint("order_id", order.ID),
		zap.String("module", order.Module))

	return c.JSON(http.StatusCreated, order)
}

// ListOrders lists orders across all tenants visible to the user,
// restricted by the row scope filter.
func ListOrders(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var orders []model.Order
	result := database.GetDB().Scopes(resolver.Scope(user)).Order("created_at DESC").Find(&orders)
	if result.Error != nil {
		return respondError(c, result.Error)
	}
	return c.JSON(http.StatusOK, orders)
}

// CreateComment adds a comment to an order. Any active member of the
// order's tenant may comment; no per-module permission applies.
func CreateComment(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order ID"})
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.Bind(&req); err != nil || req.Body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body is required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	var order model.Order
	if result := database.GetDB().First(&order, orderID); result.Error != nil {
		return deny(c)
	}

	allowed, err := resolver.AllowByMembership(user, order.TenantID)
	if err != nil {
		return respondError(c, err)
	}
	if !allowed {
		return deny(c)
	}
	prometheus.RecordAuthzDecision(true)

	comment := model.Comment{
		OrderID:  order.ID,
		AuthorID: user.ID,
		Body:     req.Body,
	}
	if result := database.GetDB().Create(&comment); result.Error != nil {
		log.Error("Failed to create comment", zap.Error(result.Error))
		return respondError(c, result.Error)
	}

	return c.JSON(http.StatusCreated, comment)
}

// UpdateComment edits a comment's body. Only the author may edit;
// module permissions grant no edit rights over someone else's words.
func UpdateComment(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid comment ID"})
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.Bind(&req); err != nil || req.Body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body is required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var comment model.Comment
	if result := database.GetDB().First(&comment, id); result.Error != nil {
		return deny(c)
	}
	var order model.Order
	if result := database.GetDB().First(&order, comment.OrderID); result.Error != nil {
		return deny(c)
	}

	allowed, err := resolver.CanMutateOwn(user, order.TenantID, comment.AuthorID)
	if err != nil {
		return respondError(c, err)
	}
	if !allowed {
		log.Warn("Unauthorized comment edit attempt",
			zap.Uint("user_id", user.ID),
			zap.Uint("comment_id", comment.ID))
		return deny(c)
	}
	prometheus.RecordAuthzDecision(true)

	if result := database.GetDB().Model(&comment).Update("body", req.Body); result.Error != nil {
		return respondError(c, result.Error)
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment. Authors may delete their own
// comments; anyone else needs delete level on the order's module.
func DeleteComment(c echo.Context) error {
	log := logger.FromContext(c)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid comment ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	var comment model.Comment
	if result := database.GetDB().First(&comment, id); result.Error != nil {
		return deny(c)
	}
	var order model.Order
	if result := database.GetDB().First(&order, comment.OrderID); result.Error != nil {
		return deny(c)
	}

	// Self-ownership is the narrower allowance; module delete level is
	// the broader one.
	allowed, err := resolver.CanMutateOwn(user, order.TenantID, comment.AuthorID)
	if err != nil {
		return respondError(c, err)
	}
	if !allowed {
		allowed, err = resolver.CanMutate(user, order.TenantID, order.Module, authz.OpDelete)
		if err != nil {
			return respondError(c, err)
		}
	}
	if !allowed {
		log.Warn("Unauthorized comment deletion attempt",
			zap.Uint("user_id", user.ID),
			zap.Uint("comment_id", comment.ID))
		return deny(c)
	}
	prometheus.RecordAuthzDecision(true)

	if result := database.GetDB().Delete(&comment); result.Error != nil {
		return respondError(c, result.Error)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment deleted"})
}
