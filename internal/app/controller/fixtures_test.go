package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupControllerDB(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	gin.SetMode(gin.TestMode)
	return testDB, gin.New()
}

// asUser sets the context keys the auth middleware would set.
func asUser(userID uint, role model.UserRole, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", role)
		handler(c)
	}
}

func createTestUser(t *testing.T, testDB *gorm.DB, email string) *model.User {
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

func createTestProduct(t *testing.T, testDB *gorm.DB, name string, price int64) *model.Product {
	t.Helper()
	product := &model.Product{Name: name, Price: decimal.NewFromInt(price), StockQuantity: 10}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func createTestCourse(t *testing.T, testDB *gorm.DB, name string, price int64) *model.Course {
	t.Helper()
	course := &model.Course{Name: name, Price: decimal.NewFromInt(price)}
	require.NoError(t, testDB.Create(course).Error)
	return course
}

func performJSON(router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

