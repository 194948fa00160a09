package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrNotPurchased    = errors.New("You can only review items you have purchased.")
	ErrAlreadyReviewed = errors.New("You have already submitted a review for this item.")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5 stars")
	ErrCommentTooLong  = errors.New("comment must be at most 1000 characters")
	ErrNotReviewable   = errors.New("only products and courses can be reviewed")
	ErrReviewNotFound  = errors.New("review not found")
)

// Statuses that count as a purchase when checking review eligibility.
var (
	productPurchaseStatuses = []model.OrderStatus{model.OrderStatusCompleted}
	coursePurchaseStatuses  = []model.OrderStatus{model.OrderStatusCompleted, model.OrderStatusPendingApproval}
)

// ReviewView is the public shape of a review.
type ReviewView struct {
	ID         uint      `json:"id"`
	Stars      int       `json:"stars"`
	Comment    string    `json:"comment"`
	DatePosted time.Time `json:"datePosted"`
	UserName   string    `json:"userName"`
}

type ReviewService interface {
	RecordReview(userID uint, role model.UserRole, ref model.ItemRef, stars int, comment string) (*ReviewView, error)
	DeleteReview(id uint) error
	ListItemReviews(ref model.ItemRef) ([]ReviewView, error)
	ListReviews(filter repository.ReviewFilter) ([]repository.ReviewRow, error)
	// ReconcileRatings recomputes the aggregate of every reviewed item and returns how many it touched.
	ReconcileRatings() (int, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	orderRepo  repository.OrderRepository
	userRepo   repository.UserRepository
	items      ItemResolver
	db         *gorm.DB
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	items ItemResolver,
	db *gorm.DB,
) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		orderRepo:  orderRepo,
		userRepo:   userRepo,
		items:      items,
		db:         db,
	}
}

func purchaseStatuses(ref model.ItemRef) []model.OrderStatus {
	if ref.Type == model.ItemTypeCourse {
		return coursePurchaseStatuses
	}
	return productPurchaseStatuses
}

func (s *reviewService) RecordReview(userID uint, role model.UserRole, ref model.ItemRef, stars int, comment string) (*ReviewView, error) {
	logger.Info("Recording review", map[string]interface{}{
		"user_id": userID,
		"item":    ref.String(),
		"stars":   stars,
	})

	if !ref.Reviewable() {
		return nil, ErrNotReviewable
	}
	if stars < 1 || stars > 5 {
		return nil, ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > model.MaxReviewCommentLength {
		return nil, ErrCommentTooLong
	}
	if _, err := s.items.Resolve(ref); err != nil {
		return nil, err
	}

	if role != model.RoleAdmin {
		purchased, err := s.orderRepo.HasPurchased(userID, ref, purchaseStatuses(ref))
		if err != nil {
			return nil, err
		}
		if !purchased {
			logger.Warn("Review rejected: item not purchased", map[string]interface{}{
				"user_id": userID,
				"item":    ref.String(),
			})
			return nil, ErrNotPurchased
		}
	}

	exists, err := s.reviewRepo.ExistsForUser(userID, ref)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	review := &model.Review{
		UserID:     userID,
		Item:       ref,
		Stars:      stars,
		Comment:    comment,
		DatePosted: time.Now(),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		reviews := s.reviewRepo.WithTx(tx)
		if err := reviews.Create(review); err != nil {
			return err
		}
		return reviews.RecomputeRating(ref)
	})
	if err != nil {
		// the unique index catches a concurrent duplicate the pre-check missed
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyReviewed
		}
		logger.Error("Failed to record review", err, map[string]interface{}{
			"user_id": userID,
			"item":    ref.String(),
		})
		return nil, err
	}

	logger.Info("Review recorded", map[string]interface{}{
		"review_id": review.ID,
		"user_id":   userID,
		"item":      ref.String(),
	})
	return &ReviewView{
		ID:         review.ID,
		Stars:      review.Stars,
		Comment:    review.Comment,
		DatePosted: review.DatePosted,
		UserName:   user.FullName(),
	}, nil
}

func (s *reviewService) DeleteReview(id uint) error {
	review, err := s.reviewRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		reviews := s.reviewRepo.WithTx(tx)
		if err := reviews.Delete(review.ID); err != nil {
			return err
		}
		return reviews.RecomputeRating(review.Item)
	})
	if err != nil {
		logger.Error("Failed to delete review", err, map[string]interface{}{
			"review_id": id,
		})
		return err
	}

	logger.Info("Review deleted", map[string]interface{}{
		"review_id": id,
		"item":      review.Item.String(),
	})
	return nil
}

func (s *reviewService) ListItemReviews(ref model.ItemRef) ([]ReviewView, error) {
	if !ref.Reviewable() {
		return nil, ErrNotReviewable
	}
	rows, err := s.reviewRepo.FindByItem(ref)
	if err != nil {
		return nil, err
	}

	views := make([]ReviewView, 0, len(rows))
	for _, row := range rows {
		views = append(views, ReviewView{
			ID:         row.ID,
			Stars:      row.Stars,
			Comment:    row.Comment,
			DatePosted: row.DatePosted,
			UserName:   row.UserName(),
		})
	}
	return views, nil
}

func (s *reviewService) ListReviews(filter repository.ReviewFilter) ([]repository.ReviewRow, error) {
	return s.reviewRepo.List(filter)
}

func (s *reviewService) ReconcileRatings() (int, error) {
	refs, err := s.reviewRepo.ReviewedItems()
	if err != nil {
		return 0, err
	}

	var failed []error
	for _, ref := range refs {
		if err := s.reviewRepo.RecomputeRating(ref); err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", ref, err))
		}
	}
	return len(refs) - len(failed), errors.Join(failed...)
}
