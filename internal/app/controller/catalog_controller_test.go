package controller

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/internal/app/service"
	"github.com/mithaqq/mithaqq-backend/pkg/video"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCatalogControllerTest(t *testing.T) (*gin.Engine, *gorm.DB, *CatalogController) {
	testDB, router := setupControllerDB(t)

	ctrl := NewCatalogController(
		service.NewProductService(repository.NewProductRepository(testDB)),
		service.NewCourseService(
			repository.NewCourseRepository(testDB),
			repository.NewOrderRepository(testDB),
			video.BunnySigner{PullZone: "vz-test.b-cdn.net", SecurityKey: "key", TTL: time.Hour},
		),
		service.NewTravelPackageService(repository.NewTravelPackageRepository(testDB)),
		service.NewContentService(repository.NewCatalogRepository(testDB)),
	)

	router.GET("/products", ctrl.ListProducts)
	router.GET("/products/:id", ctrl.GetProduct)
	router.GET("/courses/:id", ctrl.GetCourse)
	router.GET("/categories", ctrl.ListCategories)
	return router, testDB, ctrl
}

func TestCatalogController_ListProducts(t *testing.T) {
	router, testDB, _ := setupCatalogControllerTest(t)
	for i, price := range []int64{30, 10, 20} {
		createTestProduct(t, testDB, fmt.Sprintf("Mug %d", i), price)
	}
	createTestProduct(t, testDB, "Teapot", 50)

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantTotal float64
	}{
		{"all", "", 4, 4},
		{"search", "?search=mug", 3, 3},
		{"paged", "?page=2&page_size=3", 1, 4},
		{"oversized page falls back", "?page_size=1000", 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(router, http.MethodGet, "/products"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)

			response := decodeBody(t, w)
			assert.Len(t, response["items"], tt.wantCount)
			assert.Equal(t, tt.wantTotal, response["total"])
		})
	}
}

func TestCatalogController_ListProducts_SortByPrice(t *testing.T) {
	router, testDB, _ := setupCatalogControllerTest(t)
	createTestProduct(t, testDB, "Expensive", 90)
	createTestProduct(t, testDB, "Cheap", 10)

	w := performJSON(router, http.MethodGet, "/products?sort=price&order=asc", nil)
	require.Equal(t, http.StatusOK, w.Code)

	items := decodeBody(t, w)["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "Cheap", items[0].(map[string]interface{})["name"])
}

func TestCatalogController_GetProduct(t *testing.T) {
	router, testDB, _ := setupCatalogControllerTest(t)
	product := createTestProduct(t, testDB, "Prayer Mat", 100)

	w := performJSON(router, http.MethodGet, fmt.Sprintf("/products/%d", product.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decodeBody(t, w)["product"].(map[string]interface{})
	assert.Equal(t, "Prayer Mat", found["name"])
	assert.Equal(t, "100", found["price"])

	w = performJSON(router, http.MethodGet, "/products/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performJSON(router, http.MethodGet, "/products/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogController_GetCourse(t *testing.T) {
	router, testDB, _ := setupCatalogControllerTest(t)
	course := createTestCourse(t, testDB, "Arabic Basics", 50)

	w := performJSON(router, http.MethodGet, fmt.Sprintf("/courses/%d", course.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Arabic Basics", decodeBody(t, w)["course"].(map[string]interface{})["name"])

	w = performJSON(router, http.MethodGet, "/courses/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogController_GetLessonVideo(t *testing.T) {
	_, testDB, ctrl := setupCatalogControllerTest(t)
	course := createTestCourse(t, testDB, "Arabic Basics", 50)
	library := "1234"
	lesson := &model.Lesson{CourseID: course.ID, Title: "Alphabet", BunnyLibraryID: &library, BunnyVideoID: "abc-def"}
	require.NoError(t, testDB.Create(lesson).Error)
	empty := &model.Lesson{CourseID: course.ID, Title: "Reading", Order: 2}
	require.NoError(t, testDB.Create(empty).Error)

	student := createTestUser(t, testDB, "student@example.com")
	stranger := createTestUser(t, testDB, "stranger@example.com")
	order := &model.Order{
		UserID:        student.ID,
		OrderTotal:    decimal.NewFromInt(50),
		Status:        model.OrderStatusPendingApproval,
		PaymentMethod: model.PaymentMethodPayPal,
		Details: []model.OrderDetail{
			{Item: model.CourseRef(course.ID), Quantity: 1, UnitPrice: decimal.NewFromInt(50)},
		},
	}
	require.NoError(t, testDB.Create(order).Error)

	videoPath := func(lessonID uint) string {
		return fmt.Sprintf("/courses/%d/lessons/%d/video", course.ID, lessonID)
	}
	route := "/courses/:id/lessons/:lessonId/video"

	tests := []struct {
		name       string
		userID     uint
		role       model.UserRole
		lessonID   uint
		wantStatus int
	}{
		{"enrolled student", student.ID, model.RoleUser, lesson.ID, http.StatusOK},
		{"not enrolled", stranger.ID, model.RoleUser, lesson.ID, http.StatusForbidden},
		{"admin bypasses enrollment", stranger.ID, model.RoleAdmin, lesson.ID, http.StatusOK},
		{"lesson without video", student.ID, model.RoleUser, empty.ID, http.StatusNotFound},
		{"unknown lesson", student.ID, model.RoleUser, 9999, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET(route, asUser(tt.userID, tt.role, ctrl.GetLessonVideo))

			w := performJSON(router, http.MethodGet, videoPath(tt.lessonID), nil)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusOK {
				url := decodeBody(t, w)["url"].(string)
				assert.True(t, strings.HasPrefix(url, "https://vz-test.b-cdn.net/hls/1234/abc-def/playlist.m3u8?token="), url)
			}
		})
	}
}

func TestCatalogController_ListCategories(t *testing.T) {
	router, testDB, _ := setupCatalogControllerTest(t)
	require.NoError(t, testDB.Create(&model.Category{Name: "Books"}).Error)
	require.NoError(t, testDB.Create(&model.Category{Name: "Courses"}).Error)

	w := performJSON(router, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["categories"], 2)
}
