package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/internal/app/service"
	apperrors "github.com/mithaqq/mithaqq-backend/internal/errors"
	"github.com/mithaqq/mithaqq-backend/internal/middleware"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/mithaqq/mithaqq-backend/pkg/payment"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// currentUserID writes a 401 and returns false when the request is unauthenticated.
func currentUserID(c *gin.Context, log *logger.Logger) (uint, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthenticated request to protected handler", nil)
		apperrors.Unauthorized(c, "User not authenticated")
		return 0, false
	}
	return userID, true
}

// parseIDParam writes a 400 and returns false when the path parameter is not a positive id.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

func optionalUintQuery(c *gin.Context, key string) *uint {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(v)
	return &id
}

func catalogFilter(c *gin.Context) repository.CatalogFilter {
	limit, offset := pageParams(c)
	return repository.CatalogFilter{
		CategoryID:    optionalUintQuery(c, "category_id"),
		CompanyID:     optionalUintQuery(c, "company_id"),
		Search:        c.Query("search"),
		SortBy:        repository.CatalogSort(c.Query("sort")),
		SortAscending: c.Query("order") == "asc",
		Limit:         limit,
		Offset:        offset,
	}
}

func itemRefParams(c *gin.Context) (model.ItemRef, bool) {
	itemType, err := model.ParseItemType(c.Param("type"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.CartInvalidItem, "Unknown item type")
		return model.ItemRef{}, false
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return model.ItemRef{}, false
	}
	return model.ItemRef{Type: itemType, ID: id}, true
}

// respondPaymentError maps gateway failures. Provider messages are passed through with 502.
func respondPaymentError(c *gin.Context, log *logger.Logger, err error, fields map[string]interface{}) bool {
	switch {
	case errors.Is(err, service.ErrPaymentNotCompleted):
		log.Warn("Payment not completed", fields)
		apperrors.BadRequest(c, apperrors.PaymentNotCompleted, "Payment could not be completed.")
	case errors.Is(err, payment.ErrGatewayDisabled):
		log.Warn("Payment provider disabled", fields)
		apperrors.ServiceUnavailable(c, apperrors.PaymentProviderDisabled, "This payment method is not available")
	case errors.Is(err, payment.ErrProviderUnavailable):
		log.Warn("Payment provider circuit open", fields)
		apperrors.ServiceUnavailable(c, apperrors.PaymentProviderUnavailable, "The payment provider is temporarily unavailable")
	case errors.Is(err, payment.ErrInvalidRequest),
		errors.Is(err, payment.ErrUnauthorized),
		errors.Is(err, payment.ErrPaymentFailed),
		errors.Is(err, payment.ErrNetworkError):
		log.Error("Payment provider error", err, fields)
		apperrors.BadGateway(c, err.Error())
	default:
		return false
	}
	return true
}

// respondCheckoutError handles the business errors shared by every checkout endpoint.
func respondCheckoutError(c *gin.Context, log *logger.Logger, err error, fields map[string]interface{}) {
	if respondPaymentError(c, log, err, fields) {
		return
	}
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		log.Warn("Checkout with empty cart", fields)
		apperrors.BadRequest(c, apperrors.CartEmpty, "Your cart is empty.")
	case errors.Is(err, service.ErrCourseNotFound):
		log.Warn("Checkout for unknown course", fields)
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Course not found.")
	case errors.Is(err, service.ErrInvalidPaymentAmount):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Nothing to pay for")
	case errors.Is(err, service.ErrPaymentAlreadyUsed):
		log.Warn("Payment presented by another account", fields)
		apperrors.Conflict(c, apperrors.PaymentAlreadyUsed, "This payment has already been used.")
	default:
		log.Error("Checkout failed", err, fields)
		apperrors.InternalError(c, "")
	}
}
