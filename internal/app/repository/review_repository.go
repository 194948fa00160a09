package repository

import (
	"strings"
	"time"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"gorm.io/gorm"
)

// ReviewRow is a review joined with its author and the reviewed item's name.
type ReviewRow struct {
	ID         uint           `json:"id"`
	UserID     uint           `json:"user_id"`
	ItemType   model.ItemType `json:"item_type"`
	ItemID     uint           `json:"item_id"`
	ItemName   string         `json:"item_name"`
	Stars      int            `json:"stars"`
	Comment    string         `json:"comment"`
	DatePosted time.Time      `json:"date_posted"`
	FirstName  string         `json:"-"`
	LastName   string         `json:"-"`
	Email      string         `json:"user_email"`
}

func (r ReviewRow) UserName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

type ReviewFilter struct {
	SearchTerm string
	ItemType   *model.ItemType
}

type ReviewRepository interface {
	WithTx(tx *gorm.DB) ReviewRepository
	Create(review *model.Review) error
	FindByID(id uint) (*model.Review, error)
	Delete(id uint) error
	ExistsForUser(userID uint, ref model.ItemRef) (bool, error)
	FindByItem(ref model.ItemRef) ([]ReviewRow, error)
	List(filter ReviewFilter) ([]ReviewRow, error)
	RecomputeRating(ref model.ItemRef) error
	ReviewedItems() ([]model.ItemRef, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) WithTx(tx *gorm.DB) ReviewRepository {
	return &reviewRepository{db: tx}
}

func (r *reviewRepository) Create(review *model.Review) error {
	if err := r.db.Create(review).Error; err != nil {
		logger.Error("Failed to create review in database", err, map[string]interface{}{
			"user_id": review.UserID,
			"item":    review.Item.String(),
		})
		return err
	}
	return nil
}

func (r *reviewRepository) FindByID(id uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Delete(id uint) error {
	result := r.db.Delete(&model.Review{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reviewRepository) ExistsForUser(userID uint, ref model.ItemRef) (bool, error) {
	var count int64
	err := r.db.Model(&model.Review{}).
		Where("user_id = ? AND item_type = ? AND item_id = ?", userID, ref.Type, ref.ID).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepository) rows() *gorm.DB {
	return r.db.Table("reviews").
		Select(`reviews.id, reviews.user_id, reviews.item_type, reviews.item_id, reviews.stars,
			reviews.comment, reviews.date_posted, users.first_name, users.last_name, users.email,
			COALESCE(products.name, courses.name, '') AS item_name`).
		Joins("LEFT JOIN users ON users.id = reviews.user_id").
		Joins("LEFT JOIN products ON reviews.item_type = 'product' AND products.id = reviews.item_id").
		Joins("LEFT JOIN courses ON reviews.item_type = 'course' AND courses.id = reviews.item_id")
}

func (r *reviewRepository) FindByItem(ref model.ItemRef) ([]ReviewRow, error) {
	var rows []ReviewRow
	err := r.rows().
		Where("reviews.item_type = ? AND reviews.item_id = ?", ref.Type, ref.ID).
		Order("reviews.date_posted DESC").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to find reviews by item", err, map[string]interface{}{
			"item": ref.String(),
		})
		return nil, err
	}
	return rows, nil
}

// List serves the admin review table. SearchTerm matches the comment, the
// author and the reviewed item's name.
func (r *reviewRepository) List(filter ReviewFilter) ([]ReviewRow, error) {
	query := r.rows()
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"LOWER(reviews.comment) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(users.first_name) LIKE ? OR LOWER(products.name) LIKE ? OR LOWER(courses.name) LIKE ?",
			like, like, like, like, like,
		)
	}
	if filter.ItemType != nil {
		query = query.Where("reviews.item_type = ?", *filter.ItemType)
	}

	var rows []ReviewRow
	if err := query.Order("reviews.date_posted DESC").Scan(&rows).Error; err != nil {
		logger.Error("Failed to list reviews", err, map[string]interface{}{
			"search_term": filter.SearchTerm,
		})
		return nil, err
	}
	return rows, nil
}

// RecomputeRating rewrites the item's AverageRating and RatingCount from all of its
// reviews in a single UPDATE, so concurrent writers cannot interleave a read and a write.
func (r *reviewRepository) RecomputeRating(ref model.ItemRef) error {
	var target interface{}
	switch ref.Type {
	case model.ItemTypeProduct:
		target = &model.Product{}
	case model.ItemTypeCourse:
		target = &model.Course{}
	default:
		return model.ErrInvalidItemRef
	}

	avg := r.db.Model(&model.Review{}).
		Select("COALESCE(AVG(stars), 0)").
		Where("item_type = ? AND item_id = ?", ref.Type, ref.ID)
	count := r.db.Model(&model.Review{}).
		Select("COUNT(*)").
		Where("item_type = ? AND item_id = ?", ref.Type, ref.ID)

	err := r.db.Model(target).
		Where("id = ?", ref.ID).
		Updates(map[string]interface{}{
			"average_rating": gorm.Expr("(?)", avg),
			"rating_count":   gorm.Expr("(?)", count),
		}).Error
	if err != nil {
		logger.Error("Failed to recompute rating", err, map[string]interface{}{
			"item": ref.String(),
		})
		return err
	}

	logger.Debug("Rating recomputed", map[string]interface{}{
		"item": ref.String(),
	})
	return nil
}

// ReviewedItems lists every item that has at least one review.
func (r *reviewRepository) ReviewedItems() ([]model.ItemRef, error) {
	var refs []model.ItemRef
	err := r.db.Model(&model.Review{}).
		Distinct("item_type", "item_id").
		Scan(&refs).Error
	return refs, err
}
