package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/internal/app/service"
	"github.com/mithaqq/mithaqq-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthControllerTest(t *testing.T) *gin.Engine {
	testDB, router := setupControllerDB(t)

	authService := service.NewAuthService(
		repository.NewUserRepository(testDB),
		nil,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	ctrl := NewAuthController(authService)
	authMiddleware := middleware.NewAuthMiddleware("test-secret", nil)

	router.POST("/register", ctrl.Register)
	router.POST("/login", ctrl.Login)
	router.POST("/refresh", ctrl.RefreshToken)
	router.GET("/me", authMiddleware.Authenticate(), ctrl.GetMe)
	router.PUT("/me", authMiddleware.Authenticate(), ctrl.UpdateMe)
	return router
}

func registerUser(t *testing.T, router *gin.Engine, email string) map[string]interface{} {
	t.Helper()
	w := performJSON(router, http.MethodPost, "/register", map[string]string{
		"email":      email,
		"password":   "password123",
		"first_name": "Test",
		"last_name":  "User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody(t, w)
}

func accessToken(response map[string]interface{}) string {
	return response["tokens"].(map[string]interface{})["access_token"].(string)
}

func TestAuthController_Register_Success(t *testing.T) {
	router := setupAuthControllerTest(t)

	response := registerUser(t, router, "test@example.com")

	assert.Equal(t, "User registered successfully", response["message"])
	user := response["user"].(map[string]interface{})
	assert.Equal(t, "test@example.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotEmpty(t, accessToken(response))
}

func TestAuthController_Register_Validation(t *testing.T) {
	router := setupAuthControllerTest(t)

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"invalid email", map[string]string{"email": "nope", "password": "password123", "first_name": "A"}},
		{"short password", map[string]string{"email": "a@example.com", "password": "123", "first_name": "A"}},
		{"missing first name", map[string]string{"email": "a@example.com", "password": "password123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(router, http.MethodPost, "/register", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthController_Register_DuplicateEmail(t *testing.T) {
	router := setupAuthControllerTest(t)
	registerUser(t, router, "dup@example.com")

	w := performJSON(router, http.MethodPost, "/register", map[string]string{
		"email":      "dup@example.com",
		"password":   "password123",
		"first_name": "Again",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "AUTH_EMAIL_EXISTS", decodeBody(t, w)["error"])
}

func TestAuthController_Register_UnknownReferralCode(t *testing.T) {
	router := setupAuthControllerTest(t)

	w := performJSON(router, http.MethodPost, "/register", map[string]string{
		"email":         "ref@example.com",
		"password":      "password123",
		"first_name":    "Ref",
		"referral_code": "NOPE1234",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthController_Login(t *testing.T) {
	router := setupAuthControllerTest(t)
	registerUser(t, router, "login@example.com")

	t.Run("success", func(t *testing.T) {
		w := performJSON(router, http.MethodPost, "/login", map[string]string{
			"email":    "login@example.com",
			"password": "password123",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, accessToken(decodeBody(t, w)))
	})

	t.Run("wrong password", func(t *testing.T) {
		w := performJSON(router, http.MethodPost, "/login", map[string]string{
			"email":    "login@example.com",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		w := performJSON(router, http.MethodPost, "/login", map[string]string{
			"email":    "ghost@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthController_Refresh(t *testing.T) {
	router := setupAuthControllerTest(t)
	response := registerUser(t, router, "refresh@example.com")
	refresh := response["tokens"].(map[string]interface{})["refresh_token"].(string)

	w := performJSON(router, http.MethodPost, "/refresh", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, w.Code)

	w = performJSON(router, http.MethodPost, "/refresh", map[string]string{"refresh_token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_Me(t *testing.T) {
	router := setupAuthControllerTest(t)
	token := accessToken(registerUser(t, router, "me@example.com"))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "me@example.com", user["email"])

	w = performJSON(router, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
