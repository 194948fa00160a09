package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/errors"
	"github.com/mithaqq/mithaqq-backend/pkg/util"
)

// Context keys for user information
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserRoleKey  = "user_role"
	ClaimsKey    = "token_claims"
)

// TokenRevocations reports whether a token id was revoked by logout.
type TokenRevocations interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthMiddleware struct {
	jwtSecret   string
	revocations TokenRevocations
}

// NewAuthMiddleware builds the JWT middleware. revocations may be nil when redis is disabled.
func NewAuthMiddleware(jwtSecret string, revocations TokenRevocations) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:   jwtSecret,
		revocations: revocations,
	}
}

// bearerToken reads "Authorization: Bearer <token>", falling back to ?token= for websockets.
func bearerToken(c *gin.Context) (token string, malformed bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return c.Query("token"), false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", true
	}
	return parts[1], false
}

// Authenticate validates the JWT and rejects the request without one.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, malformed := bearerToken(c)
		if malformed {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}
		if token == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if err == util.ErrExpiredToken {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Token has expired")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid token")
			}
			c.Abort()
			return
		}

		if m.revocations != nil {
			revoked, err := m.revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// redis outage must not lock every user out
				log.Error("Failed to check token revocation", err, map[string]interface{}{
					"user_id": claims.UserID,
				})
			} else if revoked {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "Token has been revoked")
				c.Abort()
				return
			}
		}

		setClaims(c, claims)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})
		c.Next()
	}
}

// OptionalAuthenticate sets the user when a valid token is present and
// otherwise continues as a guest.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, malformed := bearerToken(c)
		if malformed || token == "" {
			c.Next()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			GetLoggerFromContext(c).Debug("Token validation failed - continuing as guest", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *util.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(UserRoleKey, model.UserRole(claims.Role))
	c.Set(ClaimsKey, claims)
}

// RequireRole lets the request through when the user holds one of roles.
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		role, exists := GetUserRole(c)
		if !exists {
			log.Warn("Role information not found in context", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzRoleNotFound, "Role information not found")
			c.Abort()
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		userID, _ := GetUserID(c)
		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        userID,
			"user_role":      role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.Forbidden(c, "")
		c.Abort()
	}
}

func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}

func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(model.UserRole)
	return r, ok
}

// GetClaims returns the validated token claims, used by logout to revoke the token.
func GetClaims(c *gin.Context) (*util.Claims, bool) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	cl, ok := claims.(*util.Claims)
	return cl, ok
}
