package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[tokenID], nil
}

func setupMiddlewareTest(revocations TokenRevocations) (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router, NewAuthMiddleware(testJWTSecret, revocations)
}

func generateTestToken(t *testing.T, userID uint, email string, role model.UserRole) string {
	tokens, err := util.GenerateTokenPair(userID, email, string(role), testJWTSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return tokens.AccessToken
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router, auth := setupMiddlewareTest(nil)
	token := generateTestToken(t, 7, "test@example.com", model.RoleUser)

	router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		email, _ := GetUserEmail(c)
		role, _ := GetUserRole(c)
		claims, ok := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id": userID,
			"email":   email,
			"role":    role,
			"has_jti": ok && claims.ID != "",
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(7), body["user_id"])
	assert.Equal(t, "test@example.com", body["email"])
	assert.Equal(t, "user", body["role"])
	assert.Equal(t, true, body["has_jti"])
}

func TestAuthMiddleware_Authenticate_QueryToken(t *testing.T) {
	router, auth := setupMiddlewareTest(nil)
	token := generateTestToken(t, 1, "ws@example.com", model.RoleAdmin)

	router.GET("/ws", auth.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_Authenticate_Rejections(t *testing.T) {
	valid := generateTestToken(t, 1, "test@example.com", model.RoleUser)
	other, err := util.GenerateTokenPair(1, "test@example.com", "user", "another-secret", time.Minute, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{name: "missing header", header: "", wantCode: "AUTH_UNAUTHORIZED"},
		{name: "not bearer", header: "Token " + valid, wantCode: "AUTH_TOKEN_INVALID"},
		{name: "too many parts", header: "Bearer a b", wantCode: "AUTH_TOKEN_INVALID"},
		{name: "garbage token", header: "Bearer not-a-jwt", wantCode: "AUTH_TOKEN_INVALID"},
		{name: "wrong secret", header: "Bearer " + other.AccessToken, wantCode: "AUTH_TOKEN_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := setupMiddlewareTest(nil)
			router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w)["error"])
		})
	}
}

func TestAuthMiddleware_Authenticate_MissingHeaderMessage(t *testing.T) {
	router, auth := setupMiddlewareTest(nil)
	router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header is required")
}

func TestAuthMiddleware_Authenticate_Revoked(t *testing.T) {
	token := generateTestToken(t, 1, "test@example.com", model.RoleUser)
	claims, err := util.ValidateToken(token, testJWTSecret)
	require.NoError(t, err)

	t.Run("revoked token is rejected", func(t *testing.T) {
		router, auth := setupMiddlewareTest(&fakeRevocations{revoked: map[string]bool{claims.ID: true}})
		router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "AUTH_TOKEN_REVOKED", decodeError(t, w)["error"])
	})

	t.Run("store failure lets the request through", func(t *testing.T) {
		router, auth := setupMiddlewareTest(&fakeRevocations{err: errors.New("redis down")})
		router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthMiddleware_OptionalAuthenticate(t *testing.T) {
	router, auth := setupMiddlewareTest(nil)
	router.GET("/test", auth.OptionalAuthenticate(), func(c *gin.Context) {
		userID, ok := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok, "user_id": userID})
	})

	tests := []struct {
		name     string
		header   string
		wantAuth bool
	}{
		{name: "guest", header: "", wantAuth: false},
		{name: "invalid token", header: "Bearer invalid", wantAuth: false},
		{name: "malformed header", header: "Basic abc", wantAuth: false},
		{name: "valid token", header: "Bearer " + generateTestToken(t, 3, "u@example.com", model.RoleUser), wantAuth: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantAuth, body["authenticated"])
		})
	}
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       model.UserRole
		allowed    []model.UserRole
		wantStatus int
	}{
		{name: "admin allowed", role: model.RoleAdmin, allowed: []model.UserRole{model.RoleAdmin}, wantStatus: http.StatusOK},
		{name: "company admin in list", role: model.RoleCompanyAdmin, allowed: []model.UserRole{model.RoleAdmin, model.RoleCompanyAdmin}, wantStatus: http.StatusOK},
		{name: "user forbidden", role: model.RoleUser, allowed: []model.UserRole{model.RoleAdmin}, wantStatus: http.StatusForbidden},
		{name: "marketer forbidden from admin", role: model.RoleMarketer, allowed: []model.UserRole{model.RoleAdmin, model.RoleCompanyAdmin}, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := setupMiddlewareTest(nil)
			router.GET("/admin", auth.Authenticate(), auth.RequireRole(tt.allowed...), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+generateTestToken(t, 1, "a@example.com", tt.role))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_RequireRole_WithoutAuthentication(t *testing.T) {
	router, auth := setupMiddlewareTest(nil)
	router.GET("/admin", auth.RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUTHZ_ROLE_NOT_FOUND", decodeError(t, w)["error"])
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Body.String())
}
