package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/internal/app/service"
	apperrors "github.com/mithaqq/mithaqq-backend/internal/errors"
	"github.com/mithaqq/mithaqq-backend/internal/middleware"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminController serves reporting, order management and shipping zones.
type AdminController struct {
	authService   service.AuthService
	reportService service.ReportService
	orderService  service.OrderService
	zoneService   service.ShippingZoneService
}

func NewAdminController(
	authService service.AuthService,
	reportService service.ReportService,
	orderService service.OrderService,
	zoneService service.ShippingZoneService,
) *AdminController {
	return &AdminController{
		authService:   authService,
		reportService: reportService,
		orderService:  orderService,
		zoneService:   zoneService,
	}
}

// resolveActor loads the caller's role and company. It writes the error response on failure.
func resolveActor(c *gin.Context, log *logger.Logger, authService service.AuthService) (service.Actor, bool) {
	userID, ok := currentUserID(c, log)
	if !ok {
		return service.Actor{}, false
	}
	actor, err := authService.ResolveActor(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.Unauthorized(c, "User not found")
			return service.Actor{}, false
		}
		log.Error("Failed to resolve actor", err, map[string]interface{}{"user_id": userID})
		apperrors.InternalError(c, "")
		return service.Actor{}, false
	}
	return actor, true
}

// Stats returns dashboard counters, scoped to the company for company admins
// GET /api/v1/admin/stats
// GET /api/v1/company/stats
func (ctrl *AdminController) Stats(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := resolveActor(c, log, ctrl.authService)
	if !ok {
		return
	}

	stats, err := ctrl.reportService.DashboardStats(c.Request.Context(), actor)
	if err != nil {
		log.Error("Failed to load dashboard stats", err, map[string]interface{}{"user_id": actor.UserID})
		apperrors.InternalError(c, "Failed to load dashboard stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Analytics
// GET /api/v1/admin/analytics
func (ctrl *AdminController) Analytics(c *gin.Context) {
	analytics, err := ctrl.reportService.Analytics(time.Now())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to build analytics", err)
		apperrors.InternalError(c, "Failed to build analytics")
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// orderFilter reads ?searchTerm= and ?status= plus paging. It writes a 400 for an unknown status.
func orderFilter(c *gin.Context, paged bool) (repository.OrderFilter, bool) {
	filter := repository.OrderFilter{SearchTerm: c.Query("searchTerm")}
	if raw := c.Query("status"); raw != "" {
		status, err := model.ParseOrderStatus(raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
			return filter, false
		}
		filter.Status = &status
	}
	if paged {
		filter.Limit, filter.Offset = pageParams(c)
	}
	return filter, true
}

// ListOrders
// GET /api/v1/admin/orders
func (ctrl *AdminController) ListOrders(c *gin.Context) {
	filter, ok := orderFilter(c, true)
	if !ok {
		return
	}
	orders, total, err := ctrl.reportService.ListOrders(filter)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list orders", err)
		apperrors.InternalError(c, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":    orders,
		"total":     total,
		"page":      filter.Offset/filter.Limit + 1,
		"page_size": filter.Limit,
	})
}

// GetOrder returns the order with named lines
// GET /api/v1/admin/orders/:id
func (ctrl *AdminController) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := ctrl.reportService.OrderDetail(id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to load order", err, map[string]interface{}{"order_id": id})
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, view)
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus
// PUT /api/v1/admin/orders/:id/status
func (ctrl *AdminController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}
	status, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
		return
	}

	order, err := ctrl.orderService.UpdateOrderStatus(id, status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		case errors.Is(err, model.ErrInvalidStatusTransition):
			apperrors.Conflict(c, apperrors.OrderInvalidTransition, err.Error())
		case errors.Is(err, model.ErrInvalidOrderStatus):
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
		default:
			log.Error("Failed to update order status", err, map[string]interface{}{
				"order_id": id,
				"status":   status,
			})
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ExportOrders streams the filtered orders as a spreadsheet
// GET /api/v1/admin/orders/export
func (ctrl *AdminController) ExportOrders(c *gin.Context) {
	filter, ok := orderFilter(c, false)
	if !ok {
		return
	}
	data, err := ctrl.reportService.ExportOrders(filter)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to export orders", err)
		apperrors.InternalError(c, "Failed to export orders")
		return
	}
	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ListShippingZones
// GET /api/v1/shipping-zones
func (ctrl *AdminController) ListShippingZones(c *gin.Context) {
	zones, err := ctrl.zoneService.ListZones(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list shipping zones", err)
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"zones": zones})
}

// CreateShippingZone
// POST /api/v1/admin/shipping-zones
func (ctrl *AdminController) CreateShippingZone(c *gin.Context) {
	var input service.ShippingZoneInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}
	zone, err := ctrl.zoneService.CreateZone(c.Request.Context(), input)
	if err != nil {
		respondZoneError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"zone": zone})
}

// UpdateShippingZone
// PUT /api/v1/admin/shipping-zones/:id
func (ctrl *AdminController) UpdateShippingZone(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input service.ShippingZoneInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}
	zone, err := ctrl.zoneService.UpdateZone(c.Request.Context(), id, input)
	if err != nil {
		respondZoneError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"zone": zone})
}

// DeleteShippingZone
// DELETE /api/v1/admin/shipping-zones/:id
func (ctrl *AdminController) DeleteShippingZone(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.zoneService.DeleteZone(c.Request.Context(), id); err != nil {
		respondZoneError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shipping zone deleted"})
}

func respondZoneError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShippingZoneNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Shipping zone not found")
	case errors.Is(err, service.ErrInvalidInput):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Zone name is required and cost cannot be negative")
	default:
		middleware.GetLoggerFromContext(c).Error("Shipping zone request failed", err)
		apperrors.InternalError(c, "")
	}
}
