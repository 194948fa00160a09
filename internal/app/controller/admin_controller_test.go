package controller

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/config"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/internal/app/service"
	"github.com/mithaqq/mithaqq-backend/internal/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAdminControllerTest(t *testing.T) (*gin.Engine, *gorm.DB, *model.User) {
	testDB, router := setupControllerDB(t)

	pricing, err := service.NewPricingCalculator(config.PricingConfig{})
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	courseRepo := repository.NewCourseRepository(testDB)
	zones := service.NewShippingZoneService(repository.NewShippingZoneRepository(testDB), cache.NoopCache{})

	ctrl := NewAdminController(
		service.NewAuthService(userRepo, nil, "test-secret", time.Hour, time.Hour),
		service.NewReportService(repository.NewReportRepository(testDB), orderRepo, userRepo, cache.NoopCache{}),
		service.NewOrderService(orderRepo, cartRepo, courseRepo, repository.NewUserRepository(testDB), zones, pricing, testDB),
		zones,
	)

	admin := &model.User{Email: "admin@example.com", PasswordHash: "hash", FirstName: "Admin", Role: model.RoleAdmin}
	require.NoError(t, testDB.Create(admin).Error)

	as := func(h gin.HandlerFunc) gin.HandlerFunc { return asUser(admin.ID, model.RoleAdmin, h) }
	router.GET("/admin/stats", as(ctrl.Stats))
	router.GET("/admin/orders", as(ctrl.ListOrders))
	router.GET("/admin/orders/export", as(ctrl.ExportOrders))
	router.GET("/admin/orders/:id", as(ctrl.GetOrder))
	router.PUT("/admin/orders/:id/status", as(ctrl.UpdateOrderStatus))
	router.GET("/shipping-zones", ctrl.ListShippingZones)
	router.POST("/admin/shipping-zones", as(ctrl.CreateShippingZone))
	router.PUT("/admin/shipping-zones/:id", as(ctrl.UpdateShippingZone))
	router.DELETE("/admin/shipping-zones/:id", as(ctrl.DeleteShippingZone))
	return router, testDB, admin
}

func createAdminTestOrder(t *testing.T, testDB *gorm.DB, user *model.User, status model.OrderStatus) *model.Order {
	t.Helper()
	product := createTestProduct(t, testDB, "Prayer Mat "+user.Email, 40)
	order := &model.Order{
		UserID:          user.ID,
		OrderDate:       time.Now(),
		OrderTotal:      decimal.NewFromInt(40),
		Status:          status,
		ShippingAddress: "1 Nile St",
		PhoneNumber:     "0100",
		PaymentMethod:   model.PaymentMethodCashOnDelivery,
		Details: []model.OrderDetail{
			{Item: model.ProductRef(product.ID), Quantity: 1, UnitPrice: decimal.NewFromInt(40)},
		},
	}
	require.NoError(t, repository.NewOrderRepository(testDB).Create(order))
	return order
}

func TestAdminController_ListOrders(t *testing.T) {
	router, testDB, _ := setupAdminControllerTest(t)
	alice := createTestUser(t, testDB, "alice@example.com")
	bob := createTestUser(t, testDB, "bob@example.com")
	createAdminTestOrder(t, testDB, alice, model.OrderStatusProcessing)
	createAdminTestOrder(t, testDB, bob, model.OrderStatusCompleted)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTotal  float64
	}{
		{"all", "", http.StatusOK, 2},
		{"by status", "?status=Completed", http.StatusOK, 1},
		{"by email", "?searchTerm=alice", http.StatusOK, 1},
		{"unknown status", "?status=Shipped", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(router, http.MethodGet, "/admin/orders"+tt.query, nil)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantTotal, decodeBody(t, w)["total"])
			}
		})
	}
}

func TestAdminController_UpdateOrderStatus(t *testing.T) {
	router, testDB, _ := setupAdminControllerTest(t)
	order := createAdminTestOrder(t, testDB, createTestUser(t, testDB, "buyer@example.com"), model.OrderStatusProcessing)
	path := fmt.Sprintf("/admin/orders/%d/status", order.ID)

	w := performJSON(router, http.MethodPut, path, map[string]string{"status": "Completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Completed", decodeBody(t, w)["order"].(map[string]interface{})["status"])

	w = performJSON(router, http.MethodPut, path, map[string]string{"status": "Processing"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = performJSON(router, http.MethodPut, path, map[string]string{"status": "Lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(router, http.MethodPut, "/admin/orders/9999/status", map[string]string{"status": "Completed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminController_GetOrder(t *testing.T) {
	router, testDB, _ := setupAdminControllerTest(t)
	order := createAdminTestOrder(t, testDB, createTestUser(t, testDB, "buyer@example.com"), model.OrderStatusProcessing)

	w := performJSON(router, http.MethodGet, fmt.Sprintf("/admin/orders/%d", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performJSON(router, http.MethodGet, "/admin/orders/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminController_ExportOrders(t *testing.T) {
	router, testDB, _ := setupAdminControllerTest(t)
	createAdminTestOrder(t, testDB, createTestUser(t, testDB, "buyer@example.com"), model.OrderStatusCompleted)

	w := performJSON(router, http.MethodGet, "/admin/orders/export", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders-")
	// xlsx files are zip archives
	assert.Equal(t, "PK", w.Body.String()[:2])
}

func TestAdminController_Stats(t *testing.T) {
	router, testDB, _ := setupAdminControllerTest(t)
	createAdminTestOrder(t, testDB, createTestUser(t, testDB, "buyer@example.com"), model.OrderStatusCompleted)

	w := performJSON(router, http.MethodGet, "/admin/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["totalOrders"])
}

func TestAdminController_ShippingZones(t *testing.T) {
	router, _, _ := setupAdminControllerTest(t)

	w := performJSON(router, http.MethodPost, "/admin/shipping-zones", map[string]interface{}{
		"zone_name":     "Giza",
		"city":          "Giza",
		"shipping_cost": "12.5",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	zone := decodeBody(t, w)["zone"].(map[string]interface{})
	zoneID := uint(zone["id"].(float64))
	assert.Equal(t, "12.5", zone["shipping_cost"])

	w = performJSON(router, http.MethodPost, "/admin/shipping-zones", map[string]interface{}{
		"zone_name":     "Negative",
		"shipping_cost": "-1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(router, http.MethodPut, fmt.Sprintf("/admin/shipping-zones/%d", zoneID), map[string]interface{}{
		"zone_name":     "Giza West",
		"shipping_cost": "20",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Giza West", decodeBody(t, w)["zone"].(map[string]interface{})["zone_name"])

	w = performJSON(router, http.MethodGet, "/shipping-zones", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["zones"], 1)

	w = performJSON(router, http.MethodDelete, fmt.Sprintf("/admin/shipping-zones/%d", zoneID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performJSON(router, http.MethodDelete, fmt.Sprintf("/admin/shipping-zones/%d", zoneID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
