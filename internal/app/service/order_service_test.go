package service

import (
	"context"
	"testing"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	env := setupServiceTest(t)
	user := createTestUser(t, env.db, "buyer@example.com", model.RoleUser)

	tests := []struct {
		name    string
		from    model.OrderStatus
		to      model.OrderStatus
		wantErr error
	}{
		{name: "processing to completed", from: model.OrderStatusProcessing, to: model.OrderStatusCompleted},
		{name: "approval to processing", from: model.OrderStatusPendingApproval, to: model.OrderStatusProcessing},
		{name: "legacy cash to cancelled", from: model.OrderStatusCashOnDelivery, to: model.OrderStatusCancelled},
		{name: "completed is final", from: model.OrderStatusCompleted, to: model.OrderStatusProcessing, wantErr: model.ErrInvalidStatusTransition},
		{name: "cancelled is final", from: model.OrderStatusCancelled, to: model.OrderStatusCompleted, wantErr: model.ErrInvalidStatusTransition},
		{name: "unknown status", from: model.OrderStatusProcessing, to: model.OrderStatus("Shipped"), wantErr: model.ErrInvalidOrderStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := createPaidOrder(t, env.db, user.ID, tt.from, model.ProductRef(1))

			updated, err := env.orders.UpdateOrderStatus(order.ID, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				found, err := env.orders.GetOrderByID(user.ID, order.ID)
				require.NoError(t, err)
				assert.Equal(t, tt.from, found.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Status)
		})
	}

	assert.Equal(t, []model.OrderStatus{
		model.OrderStatusCompleted,
		model.OrderStatusProcessing,
		model.OrderStatusCancelled,
	}, env.notifier.changed)

	_, err := env.orders.UpdateOrderStatus(9999, model.OrderStatusCompleted)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_GetOrderByID_OtherUser(t *testing.T) {
	env := setupServiceTest(t)
	owner := createTestUser(t, env.db, "owner@example.com", model.RoleUser)
	other := createTestUser(t, env.db, "other@example.com", model.RoleUser)
	order := createPaidOrder(t, env.db, owner.ID, model.OrderStatusProcessing, model.ProductRef(1))

	found, err := env.orders.GetOrderByID(owner.ID, order.ID)
	require.NoError(t, err)
	assert.Len(t, found.Details, 1)

	_, err = env.orders.GetOrderByID(other.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	orders, err := env.orders.GetUserOrders(other.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_CreateOrderFromCart_NoCart(t *testing.T) {
	env := setupServiceTest(t)
	user := createTestUser(t, env.db, "buyer@example.com", model.RoleUser)

	_, err := env.orders.CreateOrderFromCart(context.Background(), user.ID, ShippingInfo{}, PaymentResult{
		Method: model.PaymentMethodCashOnDelivery,
		Status: model.OrderStatusProcessing,
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, env.notifier.created)
}

func TestOrderService_CourseOrderReplay(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	user := createTestUser(t, env.db, "student@example.com", model.RoleUser)
	course := createTestCourse(t, env.db, "Go", 90, nil)
	paymentID := "pi_replay"
	result := PaymentResult{Method: model.PaymentMethodStripe, Status: model.OrderStatusPendingApproval, PaymentID: &paymentID}

	first, err := env.orders.CreateOrderForCourse(ctx, user.ID, course.ID, result)
	require.NoError(t, err)
	second, err := env.orders.CreateOrderForCourse(ctx, user.ID, course.ID, result)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, env.notifier.created, 1)

	_, err = env.orders.CreateOrderForCourse(ctx, user.ID, 9999, PaymentResult{Method: model.PaymentMethodStripe})
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestOrderService_PaymentReplayByAnotherUser(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	owner := createTestUser(t, env.db, "owner@example.com", model.RoleUser)
	intruder := createTestUser(t, env.db, "intruder@example.com", model.RoleUser)
	course := createTestCourse(t, env.db, "Go", 90, nil)
	paymentID := "pi_shared"
	result := PaymentResult{Method: model.PaymentMethodStripe, Status: model.OrderStatusPendingApproval, PaymentID: &paymentID}

	first, err := env.orders.CreateOrderForCourse(ctx, owner.ID, course.ID, result)
	require.NoError(t, err)

	_, err = env.orders.CreateOrderForCourse(ctx, intruder.ID, course.ID, result)
	assert.ErrorIs(t, err, ErrPaymentAlreadyUsed)

	product := createTestProduct(t, env.db, "Mug", 10)
	_, err = env.carts.AddItem(intruder.ID, model.ProductRef(product.ID), 1)
	require.NoError(t, err)
	_, err = env.orders.CreateOrderFromCart(ctx, intruder.ID, ShippingInfo{}, PaymentResult{
		Method:    model.PaymentMethodStripe,
		Status:    model.OrderStatusProcessing,
		PaymentID: &paymentID,
	})
	assert.ErrorIs(t, err, ErrPaymentAlreadyUsed)

	orders, err := env.orders.GetUserOrders(intruder.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	count, err := env.carts.ItemCount(intruder.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "intruder's cart is left alone")

	found, err := env.orders.GetOrderByID(owner.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, found.UserID)
	assert.Len(t, env.notifier.created, 1)
}

func TestOrderService_CourseOrderUsesBuyerPhone(t *testing.T) {
	env := setupServiceTest(t)
	user := createTestUser(t, env.db, "student@example.com", model.RoleUser)
	require.NoError(t, env.db.Model(user).Update("phone", "01001234567").Error)
	course := createTestCourse(t, env.db, "Go", 90, nil)

	order, err := env.orders.CreateOrderForCourse(context.Background(), user.ID, course.ID, PaymentResult{
		Method: model.PaymentMethodCashOnDelivery,
		Status: model.OrderStatusPendingApproval,
	})
	require.NoError(t, err)
	assert.Equal(t, "01001234567", order.PhoneNumber)
	assert.Equal(t, model.DigitalDeliveryAddress, order.ShippingAddress)

	found, err := env.orders.GetOrderByID(user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "01001234567", found.PhoneNumber)
}

// staleOrders serves a status read before another admin changed it.
type staleOrders struct {
	repository.OrderRepository
	status model.OrderStatus
}

func (r staleOrders) FindByID(id uint) (*model.Order, error) {
	order, err := r.OrderRepository.FindByID(id)
	if err != nil {
		return nil, err
	}
	order.Status = r.status
	return order, nil
}

func TestOrderService_UpdateOrderStatus_ConcurrentChange(t *testing.T) {
	env := setupServiceTest(t)
	user := createTestUser(t, env.db, "buyer@example.com", model.RoleUser)
	order := createPaidOrder(t, env.db, user.ID, model.OrderStatusCancelled, model.ProductRef(1))

	orders := NewOrderService(
		staleOrders{OrderRepository: repository.NewOrderRepository(env.db), status: model.OrderStatusProcessing},
		repository.NewCartRepository(env.db),
		repository.NewCourseRepository(env.db),
		repository.NewUserRepository(env.db),
		env.zones,
		env.pricing,
		env.db,
	)

	_, err := orders.UpdateOrderStatus(order.ID, model.OrderStatusCompleted)
	assert.ErrorIs(t, err, model.ErrInvalidStatusTransition)

	found, err := env.orders.GetOrderByID(user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, found.Status)
}

// explodingCarts panics once the order transaction reads cart lines.
type explodingCarts struct {
	repository.CartRepository
}

func (r explodingCarts) WithTx(tx *gorm.DB) repository.CartRepository {
	return explodingCarts{CartRepository: r.CartRepository.WithTx(tx)}
}

func (r explodingCarts) FindItems(uint) ([]model.CartItem, error) {
	panic("cart lines unreadable")
}

func TestOrderService_CreateOrderFromCart_PanicRollsBack(t *testing.T) {
	env := setupServiceTest(t)
	user := createTestUser(t, env.db, "buyer@example.com", model.RoleUser)
	product := createTestProduct(t, env.db, "Mug", 10)
	_, err := env.carts.AddItem(user.ID, model.ProductRef(product.ID), 2)
	require.NoError(t, err)

	orders := NewOrderService(
		repository.NewOrderRepository(env.db),
		explodingCarts{CartRepository: repository.NewCartRepository(env.db)},
		repository.NewCourseRepository(env.db),
		repository.NewUserRepository(env.db),
		env.zones,
		env.pricing,
		env.db,
	)

	order, err := orders.CreateOrderFromCart(context.Background(), user.ID, ShippingInfo{}, PaymentResult{
		Method: model.PaymentMethodCashOnDelivery,
		Status: model.OrderStatusProcessing,
	})
	require.Error(t, err)
	assert.Nil(t, order)
	assert.ErrorContains(t, err, "cart lines unreadable")

	// the transaction was released and nothing was written
	count, err := env.carts.ItemCount(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	var n int64
	require.NoError(t, env.db.Model(&model.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}
