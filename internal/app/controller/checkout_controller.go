package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/internal/app/service"
	apperrors "github.com/mithaqq/mithaqq-backend/internal/errors"
	"github.com/mithaqq/mithaqq-backend/internal/middleware"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{checkoutService: checkoutService}
}

type PlaceOrderRequest struct {
	ShippingZoneID  int    `json:"shipping_zone_id" form:"ShippingZoneId"`
	ShippingAddress string `json:"shipping_address" form:"ShippingAddress" binding:"required"`
	PhoneNumber     string `json:"phone_number" form:"PhoneNumber" binding:"required"`
}

// Index returns the cart checkout view: lines, subtotal and shipping zones.
// GET /Checkout/Index
func (ctrl *CheckoutController) Index(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}

	view, err := ctrl.checkoutService.CheckoutPage(c.Request.Context(), userID)
	if err != nil {
		respondCheckoutError(c, log, err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}
	c.JSON(http.StatusOK, view)
}

// CourseCheckout returns the single-course checkout view.
// GET /Checkout/CourseCheckout?courseId=
func (ctrl *CheckoutController) CourseCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}

	courseID, err := strconv.ParseUint(c.Query("courseId"), 10, 32)
	if err != nil || courseID == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid courseId")
		return
	}

	view, err := ctrl.checkoutService.CourseCheckoutPage(c.Request.Context(), userID, uint(courseID))
	if err != nil {
		respondCheckoutError(c, log, err, map[string]interface{}{
			"user_id":   userID,
			"course_id": courseID,
		})
		return
	}
	c.JSON(http.StatusOK, view)
}

// PlaceOrder creates a cash-on-delivery order from the cart.
// POST /Checkout/PlaceOrder
func (ctrl *CheckoutController) PlaceOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid place order request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Shipping address and phone number are required")
		return
	}

	order, err := ctrl.checkoutService.PlaceCashOrder(c.Request.Context(), userID, service.ShippingInfo{
		ShippingZoneID:  req.ShippingZoneID,
		ShippingAddress: req.ShippingAddress,
		PhoneNumber:     req.PhoneNumber,
	})
	if err != nil {
		respondCheckoutError(c, log, err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	log.Info("Cash order placed", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
	})
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"order":   order,
	})
}

// ShippingCost returns the cost of one zone.
// GET /api/checkout/shippingcost/:zoneId
func (ctrl *CheckoutController) ShippingCost(c *gin.Context) {
	zoneID, err := strconv.Atoi(c.Param("zoneId"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid zoneId")
		return
	}

	cost, err := ctrl.checkoutService.ShippingCost(c.Request.Context(), zoneID)
	if err != nil {
		if errors.Is(err, service.ErrShippingZoneNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Shipping zone not found")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to load shipping cost", err, map[string]interface{}{
			"zone_id": zoneID,
		})
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cost": cost})
}

// CreatePayPalOrder prices the cart or course and opens a PayPal order.
// POST /api/checkout/create-paypal-order
func (ctrl *CheckoutController) CreatePayPalOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}

	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	session, err := ctrl.checkoutService.CreatePayPalOrder(c.Request.Context(), userID, req)
	if err != nil {
		respondCheckoutError(c, log, err, map[string]interface{}{
			"user_id":   userID,
			"course_id": req.CourseID,
			"provider":  "PayPal",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          session.ID,
		"status":      session.Status,
		"approve_url": session.RedirectURL,
	})
}

// CapturePayPalOrder captures an approved PayPal order and records the local order.
// POST /api/checkout/capture-paypal-order
func (ctrl *CheckoutController) CapturePayPalOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}

	var req service.CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid capture request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationRequired, "order_id is required")
		return
	}

	order, err := ctrl.checkoutService.CapturePayPalOrder(c.Request.Context(), userID, req)
	if err != nil {
		respondCheckoutError(c, log, err, map[string]interface{}{
			"user_id":         userID,
			"paypal_order_id": req.OrderID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   order,
	})
}

// CreateStripeSession prices the cart or course and opens a Stripe checkout session.
// POST /api/checkout/create-stripe-session
func (ctrl *CheckoutController) CreateStripeSession(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}

	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	session, err := ctrl.checkoutService.CreateStripeSession(c.Request.Context(), userID, req)
	if err != nil {
		respondCheckoutError(c, log, err, map[string]interface{}{
			"user_id":   userID,
			"course_id": req.CourseID,
			"provider":  "Stripe",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": session.ID,
		"url":       session.RedirectURL,
	})
}

// StripeSuccess confirms the session with Stripe and records the local order.
// GET /Checkout/StripeSuccess?session_id=
func (ctrl *CheckoutController) StripeSuccess(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "session_id is required")
		return
	}

	order, err := ctrl.checkoutService.ConfirmStripeSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		respondCheckoutError(c, log, err, map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   order,
	})
}
