package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/internal/app/service"
	apperrors "github.com/mithaqq/mithaqq-backend/internal/errors"
	"github.com/mithaqq/mithaqq-backend/internal/middleware"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
)

type MarketerController struct {
	marketerService service.MarketerService
}

func NewMarketerController(marketerService service.MarketerService) *MarketerController {
	return &MarketerController{marketerService: marketerService}
}

func respondMarketerError(c *gin.Context, log *logger.Logger, err error, fields map[string]interface{}) {
	switch {
	case errors.Is(err, service.ErrNotMarketer):
		apperrors.Forbidden(c, "Marketer account required")
	case errors.Is(err, service.ErrUserNotFound):
		apperrors.Unauthorized(c, "User not found")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Product not found")
	default:
		log.Error("Marketer request failed", err, fields)
		apperrors.InternalError(c, "")
	}
}

// Dashboard returns the referral code, referred users and commission
// GET /api/v1/marketer/dashboard
func (ctrl *MarketerController) Dashboard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}

	dashboard, err := ctrl.marketerService.Dashboard(userID)
	if err != nil {
		respondMarketerError(c, log, err, map[string]interface{}{"user_id": userID})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// ListPackages
// GET /api/v1/marketer/packages
func (ctrl *MarketerController) ListPackages(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}

	products, err := ctrl.marketerService.ListPackages(userID)
	if err != nil {
		respondMarketerError(c, log, err, map[string]interface{}{"user_id": userID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": products, "count": len(products)})
}

// AddPackage
// POST /api/v1/marketer/packages/:productId
func (ctrl *MarketerController) AddPackage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	if err := ctrl.marketerService.AddPackage(userID, productID); err != nil {
		respondMarketerError(c, log, err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product added to your packages"})
}

// RemovePackage
// DELETE /api/v1/marketer/packages/:productId
func (ctrl *MarketerController) RemovePackage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	if err := ctrl.marketerService.RemovePackage(userID, productID); err != nil {
		respondMarketerError(c, log, err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed from your packages"})
}
