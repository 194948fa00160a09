package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createUser(t *testing.T, testDB *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createProduct(t *testing.T, testDB *gorm.DB, name string, price int64) *model.Product {
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

func createCourse(t *testing.T, testDB *gorm.DB, name string, price int64) *model.Course {
	t.Helper()
	course := &model.Course{
		Name:       name,
		Price:      decimal.NewFromInt(price),
		IsOnline:   true,
		CompanyID:  1,
		CategoryID: 1,
	}
	require.NoError(t, testDB.Create(course).Error)
	return course
}

func createOrder(t *testing.T, testDB *gorm.DB, userID uint, status model.OrderStatus, details ...model.OrderDetail) *model.Order {
	t.Helper()
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity))))
	}
	order := &model.Order{
		UserID:          userID,
		OrderDate:       time.Now(),
		OrderTotal:      total,
		Status:          status,
		ShippingAddress: fmt.Sprintf("Street %d", userID),
		PhoneNumber:     "01000000000",
		PaymentMethod:   model.PaymentMethodCashOnDelivery,
		Details:         details,
	}
	require.NoError(t, NewOrderRepository(testDB).Create(order))
	return order
}
