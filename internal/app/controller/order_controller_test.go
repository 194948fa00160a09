package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/config"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/internal/app/service"
	"github.com/mithaqq/mithaqq-backend/internal/cache"
	"github.com/mithaqq/mithaqq-backend/pkg/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type checkoutFixture struct {
	router  *gin.Engine
	db      *gorm.DB
	user    *model.User
	product *model.Product
	zone    *model.ShippingZone
	carts   service.CartService
}

// setupCheckoutControllerTest wires the order and checkout controllers with both card providers disabled.
func setupCheckoutControllerTest(t *testing.T) checkoutFixture {
	testDB, router := setupControllerDB(t)

	pricing, err := service.NewPricingCalculator(config.PricingConfig{})
	require.NoError(t, err)

	cartRepo := repository.NewCartRepository(testDB)
	courseRepo := repository.NewCourseRepository(testDB)
	items := service.NewItemResolver(repository.NewProductRepository(testDB), courseRepo, repository.NewTravelPackageRepository(testDB))
	zones := service.NewShippingZoneService(repository.NewShippingZoneRepository(testDB), cache.NoopCache{})
	orders := service.NewOrderService(repository.NewOrderRepository(testDB), cartRepo, courseRepo, repository.NewUserRepository(testDB), zones, pricing, testDB)
	checkout := service.NewCheckoutService(cartRepo, courseRepo, items, zones, orders, pricing,
		payment.Disabled("paypal"), payment.Disabled("stripe"), "http://localhost:8080")

	orderCtrl := NewOrderController(orders)
	checkoutCtrl := NewCheckoutController(checkout)

	user := createTestUser(t, testDB, "buyer@example.com")
	router.GET("/orders", asUser(user.ID, model.RoleUser, orderCtrl.GetOrders))
	router.GET("/orders/:id", asUser(user.ID, model.RoleUser, orderCtrl.GetOrderByID))
	router.GET("/Checkout/Index", asUser(user.ID, model.RoleUser, checkoutCtrl.Index))
	router.POST("/Checkout/PlaceOrder", asUser(user.ID, model.RoleUser, checkoutCtrl.PlaceOrder))
	router.GET("/shippingcost/:zoneId", checkoutCtrl.ShippingCost)
	router.POST("/create-paypal-order", asUser(user.ID, model.RoleUser, checkoutCtrl.CreatePayPalOrder))
	router.POST("/capture-paypal-order", asUser(user.ID, model.RoleUser, checkoutCtrl.CapturePayPalOrder))

	zone := &model.ShippingZone{ZoneName: "Downtown", City: "Cairo", ShippingCost: decimal.NewFromInt(15)}
	require.NoError(t, testDB.Create(zone).Error)

	return checkoutFixture{
		router:  router,
		db:      testDB,
		user:    user,
		product: createTestProduct(t, testDB, "Prayer Mat", 100),
		zone:    zone,
		carts:   service.NewCartService(cartRepo, items, pricing),
	}
}

func (f checkoutFixture) placeCashOrder(t *testing.T) map[string]interface{} {
	t.Helper()
	_, err := f.carts.AddItem(f.user.ID, model.ProductRef(f.product.ID), 2)
	require.NoError(t, err)

	w := performJSON(f.router, http.MethodPost, "/Checkout/PlaceOrder", map[string]interface{}{
		"shipping_zone_id": f.zone.ID,
		"shipping_address": "1 Nile St",
		"phone_number":     "0100",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody(t, w)["order"].(map[string]interface{})
}

func TestCheckoutController_PlaceOrder(t *testing.T) {
	f := setupCheckoutControllerTest(t)

	order := f.placeCashOrder(t)

	assert.Equal(t, "215", order["order_total"])
	assert.Equal(t, string(model.OrderStatusProcessing), order["status"])
	assert.Equal(t, string(model.PaymentMethodCashOnDelivery), order["payment_method"])
	assert.Len(t, order["details"], 1)

	count, err := f.carts.ItemCount(f.user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCheckoutController_PlaceOrder_Errors(t *testing.T) {
	f := setupCheckoutControllerTest(t)

	t.Run("missing address", func(t *testing.T) {
		w := performJSON(f.router, http.MethodPost, "/Checkout/PlaceOrder", map[string]interface{}{
			"phone_number": "0100",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty cart", func(t *testing.T) {
		w := performJSON(f.router, http.MethodPost, "/Checkout/PlaceOrder", map[string]interface{}{
			"shipping_address": "1 Nile St",
			"phone_number":     "0100",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "CART_EMPTY", decodeBody(t, w)["error"])
	})
}

func TestCheckoutController_Index(t *testing.T) {
	f := setupCheckoutControllerTest(t)
	_, err := f.carts.AddItem(f.user.ID, model.ProductRef(f.product.ID), 1)
	require.NoError(t, err)

	w := performJSON(f.router, http.MethodGet, "/Checkout/Index", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheckoutController_ShippingCost(t *testing.T) {
	f := setupCheckoutControllerTest(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"known zone", fmt.Sprintf("/shippingcost/%d", f.zone.ID), http.StatusOK},
		{"unknown zone", "/shippingcost/9999", http.StatusNotFound},
		{"invalid id", "/shippingcost/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(f.router, http.MethodGet, tt.path, nil)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "15", decodeBody(t, w)["cost"])
			}
		})
	}
}

func TestCheckoutController_PayPalDisabled(t *testing.T) {
	f := setupCheckoutControllerTest(t)

	w := performJSON(f.router, http.MethodPost, "/create-paypal-order", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty cart is rejected before the provider is called")

	_, err := f.carts.AddItem(f.user.ID, model.ProductRef(f.product.ID), 1)
	require.NoError(t, err)
	w = performJSON(f.router, http.MethodPost, "/create-paypal-order", map[string]interface{}{})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = performJSON(f.router, http.MethodPost, "/capture-paypal-order", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderController_GetOrders(t *testing.T) {
	f := setupCheckoutControllerTest(t)

	w := performJSON(f.router, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeBody(t, w)["count"])

	f.placeCashOrder(t)

	w = performJSON(f.router, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])
}

func TestOrderController_GetOrderByID(t *testing.T) {
	f := setupCheckoutControllerTest(t)
	orderID := uint(f.placeCashOrder(t)["id"].(float64))

	w := performJSON(f.router, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	order := decodeBody(t, w)["order"].(map[string]interface{})
	assert.Equal(t, "1 Nile St", order["shipping_address"])

	w = performJSON(f.router, http.MethodGet, "/orders/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performJSON(f.router, http.MethodGet, "/orders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderController_GetOrderByID_OtherUser(t *testing.T) {
	f := setupCheckoutControllerTest(t)
	orderID := uint(f.placeCashOrder(t)["id"].(float64))
	other := createTestUser(t, f.db, "other@example.com")

	router := gin.New()
	router.GET("/orders/:id", asUser(other.ID, model.RoleUser,
		NewOrderController(service.NewOrderService(
			repository.NewOrderRepository(f.db),
			repository.NewCartRepository(f.db),
			repository.NewCourseRepository(f.db),
			repository.NewUserRepository(f.db),
			service.NewShippingZoneService(repository.NewShippingZoneRepository(f.db), nil),
			mustPricing(t),
			f.db,
		)).GetOrderByID))

	w := performJSON(router, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func mustPricing(t *testing.T) *service.PricingCalculator {
	t.Helper()
	pricing, err := service.NewPricingCalculator(config.PricingConfig{})
	require.NoError(t, err)
	return pricing
}
