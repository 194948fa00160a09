package service

import (
	"strings"
	"testing"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewService_RecordReview_Eligibility(t *testing.T) {
	env := setupServiceTest(t)
	buyer := createTestUser(t, env.db, "buyer@example.com", model.RoleUser)
	browser := createTestUser(t, env.db, "browser@example.com", model.RoleUser)
	admin := createTestUser(t, env.db, "admin@example.com", model.RoleAdmin)
	product := createTestProduct(t, env.db, "Mug", 100)
	course := createTestCourse(t, env.db, "Go", 300, nil)
	productRef := model.ProductRef(product.ID)
	courseRef := model.CourseRef(course.ID)

	createPaidOrder(t, env.db, buyer.ID, model.OrderStatusCompleted, productRef)
	createPaidOrder(t, env.db, buyer.ID, model.OrderStatusPendingApproval, courseRef)
	createPaidOrder(t, env.db, browser.ID, model.OrderStatusProcessing, productRef)

	tests := []struct {
		name    string
		userID  uint
		role    model.UserRole
		ref     model.ItemRef
		stars   int
		comment string
		wantErr error
	}{
		{name: "completed product order", userID: buyer.ID, role: model.RoleUser, ref: productRef, stars: 5},
		{name: "course awaiting approval", userID: buyer.ID, role: model.RoleUser, ref: courseRef, stars: 4},
		{name: "processing order does not count", userID: browser.ID, role: model.RoleUser, ref: productRef, stars: 3, wantErr: ErrNotPurchased},
		{name: "admin needs no purchase", userID: admin.ID, role: model.RoleAdmin, ref: productRef, stars: 1},
		{name: "duplicate", userID: buyer.ID, role: model.RoleUser, ref: productRef, stars: 2, wantErr: ErrAlreadyReviewed},
		{name: "zero stars", userID: buyer.ID, role: model.RoleUser, ref: productRef, stars: 0, wantErr: ErrInvalidRating},
		{name: "six stars", userID: buyer.ID, role: model.RoleUser, ref: productRef, stars: 6, wantErr: ErrInvalidRating},
		{name: "comment too long", userID: admin.ID, role: model.RoleAdmin, ref: courseRef, stars: 3, comment: strings.Repeat("a", 1001), wantErr: ErrCommentTooLong},
		{name: "packages are not reviewable", userID: admin.ID, role: model.RoleAdmin, ref: model.TravelPackageRef(1), stars: 3, wantErr: ErrNotReviewable},
		{name: "unknown item", userID: admin.ID, role: model.RoleAdmin, ref: model.ProductRef(9999), stars: 3, wantErr: ErrItemNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := env.reviews.RecordReview(tt.userID, tt.role, tt.ref, tt.stars, tt.comment)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.stars, view.Stars)
			assert.Equal(t, "Jane Doe", view.UserName)
		})
	}

	assert.Equal(t, "You can only review items you have purchased.", ErrNotPurchased.Error())
	assert.Equal(t, "You have already submitted a review for this item.", ErrAlreadyReviewed.Error())
}

func TestReviewService_RatingAggregate(t *testing.T) {
	env := setupServiceTest(t)
	product := createTestProduct(t, env.db, "Mug", 100)
	ref := model.ProductRef(product.ID)
	products := repository.NewProductRepository(env.db)

	var reviewIDs []uint
	for i, stars := range []int{5, 4, 2} {
		user := createTestUser(t, env.db, strings.Repeat("u", i+1)+"@example.com", model.RoleUser)
		createPaidOrder(t, env.db, user.ID, model.OrderStatusCompleted, ref)
		view, err := env.reviews.RecordReview(user.ID, model.RoleUser, ref, stars, " great ")
		require.NoError(t, err)
		assert.Equal(t, "great", view.Comment)
		reviewIDs = append(reviewIDs, view.ID)
	}

	found, err := products.FindByID(product.ID)
	require.NoError(t, err)
	assert.InDelta(t, 11.0/3.0, found.AverageRating, 0.0001)
	assert.Equal(t, 3, found.RatingCount)

	require.NoError(t, env.reviews.DeleteReview(reviewIDs[0]))
	found, err = products.FindByID(product.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, found.AverageRating, 0.0001)
	assert.Equal(t, 2, found.RatingCount)

	assert.ErrorIs(t, env.reviews.DeleteReview(reviewIDs[0]), ErrReviewNotFound)

	views, err := env.reviews.ListItemReviews(ref)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestReviewService_ReconcileRatings(t *testing.T) {
	env := setupServiceTest(t)
	admin := createTestUser(t, env.db, "admin@example.com", model.RoleAdmin)
	course := createTestCourse(t, env.db, "Go", 100, nil)
	ref := model.CourseRef(course.ID)

	_, err := env.reviews.RecordReview(admin.ID, model.RoleAdmin, ref, 4, "")
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&model.Course{}).Where("id = ?", course.ID).
		Updates(map[string]interface{}{"average_rating": 1.0, "rating_count": 9}).Error)

	touched, err := env.reviews.ReconcileRatings()
	require.NoError(t, err)
	assert.Equal(t, 1, touched)

	found, err := repository.NewCourseRepository(env.db).FindByID(course.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, found.AverageRating, 0.0001)
	assert.Equal(t, 1, found.RatingCount)
}
