package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mithaqq/mithaqq-backend/config"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/internal/cache"
	"github.com/mithaqq/mithaqq-backend/internal/db"
	"github.com/mithaqq/mithaqq-backend/pkg/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testDomain = "https://shop.example.com"

type fakeGateway struct {
	name         string
	charges      []payment.Charge
	confirmation *payment.Confirmation
	createErr    error
	confirmErr   error
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) CreateCharge(_ context.Context, charge payment.Charge) (*payment.ChargeSession, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.charges = append(g.charges, charge)
	return &payment.ChargeSession{ID: g.name + "-session", RedirectURL: "https://pay.example.com/approve", Status: "CREATED"}, nil
}

func (g *fakeGateway) ConfirmCharge(context.Context, string) (*payment.Confirmation, error) {
	if g.confirmErr != nil {
		return nil, g.confirmErr
	}
	return g.confirmation, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	created []uint
	changed []model.OrderStatus
}

func (n *recordingNotifier) OrderCreated(order *model.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, order.ID)
}

func (n *recordingNotifier) OrderStatusChanged(order *model.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, order.Status)
}

type testEnv struct {
	db       *gorm.DB
	pricing  *PricingCalculator
	items    ItemResolver
	carts    CartService
	zones    ShippingZoneService
	orders   OrderService
	checkout CheckoutService
	reviews  ReviewService
	paypal   *fakeGateway
	stripe   *fakeGateway
	notifier *recordingNotifier
}

func testPricingConfig() config.PricingConfig {
	return config.PricingConfig{
		DeliveryCost: decimal.NewFromInt(25),
		Tax:          decimal.NewFromInt(14),
		Discount:     decimal.NewFromInt(60),
	}
}

func setupServiceTest(t *testing.T) *testEnv {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	pricing, err := NewPricingCalculator(testPricingConfig())
	require.NoError(t, err)

	cartRepo := repository.NewCartRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	courseRepo := repository.NewCourseRepository(testDB)
	items := NewItemResolver(
		repository.NewProductRepository(testDB),
		courseRepo,
		repository.NewTravelPackageRepository(testDB),
	)
	zones := NewShippingZoneService(repository.NewShippingZoneRepository(testDB), cache.NoopCache{})
	orders := NewOrderService(orderRepo, cartRepo, courseRepo, repository.NewUserRepository(testDB), zones, pricing, testDB)
	notifier := &recordingNotifier{}
	orders.SetNotifier(notifier)

	env := &testEnv{
		db:       testDB,
		pricing:  pricing,
		items:    items,
		carts:    NewCartService(cartRepo, items, pricing),
		zones:    zones,
		orders:   orders,
		paypal:   &fakeGateway{name: "PayPal"},
		stripe:   &fakeGateway{name: "Stripe"},
		notifier: notifier,
	}
	env.checkout = NewCheckoutService(cartRepo, courseRepo, items, zones, orders, pricing, env.paypal, env.stripe, testDomain)
	env.reviews = NewReviewService(
		repository.NewReviewRepository(testDB),
		orderRepo,
		repository.NewUserRepository(testDB),
		items,
		testDB,
	)
	return env
}

func createTestUser(t *testing.T, testDB *gorm.DB, email string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Jane",
		LastName:     "Doe",
		Role:         role,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createTestProduct(t *testing.T, testDB *gorm.DB, name string, price int64) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:          name,
		Price:         decimal.NewFromInt(price),
		StockQuantity: 10,
		CompanyID:     1,
		CategoryID:    1,
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func createTestCourse(t *testing.T, testDB *gorm.DB, name string, price int64, salePrice *int64) *model.Course {
	t.Helper()
	course := &model.Course{
		Name:       name,
		Price:      decimal.NewFromInt(price),
		IsOnline:   true,
		CompanyID:  1,
		CategoryID: 1,
	}
	if salePrice != nil {
		sale := decimal.NewFromInt(*salePrice)
		course.SalePrice = &sale
	}
	require.NoError(t, testDB.Create(course).Error)
	return course
}

func createTestZone(t *testing.T, testDB *gorm.DB, cost int64) *model.ShippingZone {
	t.Helper()
	zone := &model.ShippingZone{ZoneName: "Test Zone", City: "Cairo", ShippingCost: decimal.NewFromInt(cost)}
	require.NoError(t, testDB.Create(zone).Error)
	return zone
}

func createPaidOrder(t *testing.T, testDB *gorm.DB, userID uint, status model.OrderStatus, ref model.ItemRef) *model.Order {
	t.Helper()
	order := &model.Order{
		UserID:        userID,
		OrderDate:     time.Now(),
		OrderTotal:    decimal.NewFromInt(10),
		Status:        status,
		PaymentMethod: model.PaymentMethodCashOnDelivery,
		Details:       []model.OrderDetail{{Item: ref, Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	}
	require.NoError(t, repository.NewOrderRepository(testDB).Create(order))
	return order
}

func int64Ptr(v int64) *int64 { return &v }
