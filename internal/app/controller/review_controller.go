package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/internal/app/service"
	apperrors "github.com/mithaqq/mithaqq-backend/internal/errors"
	"github.com/mithaqq/mithaqq-backend/internal/middleware"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

// CreateReviewRequest targets exactly one of ProductID or CourseID.
type CreateReviewRequest struct {
	ProductID *uint  `json:"productId"`
	CourseID  *uint  `json:"courseId"`
	Stars     int    `json:"stars" binding:"required"`
	Comment   string `json:"comment"`
}

func (r CreateReviewRequest) ref() (model.ItemRef, bool) {
	switch {
	case r.ProductID != nil && r.CourseID == nil:
		return model.ProductRef(*r.ProductID), true
	case r.CourseID != nil && r.ProductID == nil:
		return model.CourseRef(*r.CourseID), true
	}
	return model.ItemRef{}, false
}

// CreateReview records a review from a buyer and refreshes the item rating
// POST /api/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}
	role, _ := middleware.GetUserRole(c)

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid review request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}
	ref, ok := req.ref()
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Specify either productId or courseId")
		return
	}

	review, err := ctrl.reviewService.RecordReview(userID, role, ref, req.Stars, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotPurchased):
			apperrors.BadRequest(c, apperrors.ReviewNotPurchased, service.ErrNotPurchased.Error())
		case errors.Is(err, service.ErrAlreadyReviewed):
			apperrors.BadRequest(c, apperrors.ReviewAlreadyExists, service.ErrAlreadyReviewed.Error())
		case errors.Is(err, service.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "Rating must be between 1 and 5 stars")
		case errors.Is(err, service.ErrCommentTooLong):
			apperrors.BadRequest(c, apperrors.ReviewCommentTooLong, "Comment must be at most 1000 characters")
		case errors.Is(err, service.ErrItemNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Item not found")
		default:
			log.Error("Failed to record review", err, map[string]interface{}{
				"user_id": userID,
				"item":    ref.String(),
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, review)
}

// GetItemReviews lists the reviews of one product or course
// GET /api/v1/reviews/:type/:id
func (ctrl *ReviewController) GetItemReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	ref, ok := itemRefParams(c)
	if !ok {
		return
	}

	reviews, err := ctrl.reviewService.ListItemReviews(ref)
	if err != nil {
		if errors.Is(err, service.ErrNotReviewable) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Only products and courses have reviews")
			return
		}
		log.Error("Failed to list reviews", err, map[string]interface{}{
			"item": ref.String(),
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// ListReviews is the admin review table
// GET /api/v1/admin/reviews
func (ctrl *ReviewController) ListReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.ReviewFilter{SearchTerm: c.Query("searchTerm")}
	if raw := c.Query("itemType"); raw != "" {
		itemType, err := model.ParseItemType(raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unknown item type")
			return
		}
		filter.ItemType = &itemType
	}

	rows, err := ctrl.reviewService.ListReviews(filter)
	if err != nil {
		log.Error("Failed to list reviews", err)
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews": rows,
		"count":   len(rows),
	})
}

// DeleteReview removes a review and refreshes the item rating
// DELETE /api/v1/admin/reviews/:id
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.reviewService.DeleteReview(reviewID); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			apperrors.NotFound(c, apperrors.ReviewNotFound, "Review not found")
			return
		}
		log.Error("Failed to delete review", err, map[string]interface{}{
			"review_id": reviewID,
		})
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
