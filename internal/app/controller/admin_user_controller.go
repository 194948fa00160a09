package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/internal/app/service"
	apperrors "github.com/mithaqq/mithaqq-backend/internal/errors"
	"github.com/mithaqq/mithaqq-backend/internal/middleware"
)

// AdminUserController manages accounts and the roles that registration cannot grant.
type AdminUserController struct {
	authService service.AuthService
	userService service.UserAdminService
}

func NewAdminUserController(authService service.AuthService, userService service.UserAdminService) *AdminUserController {
	return &AdminUserController{authService: authService, userService: userService}
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
	case errors.Is(err, service.ErrEmailAlreadyExists):
		apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "Email is already registered")
	case errors.Is(err, service.ErrInvalidRole):
		apperrors.BadRequest(c, apperrors.AuthzRoleNotFound, "Unknown role")
	case errors.Is(err, service.ErrCompanyNotFound):
		apperrors.BadRequest(c, apperrors.ResourceNotFound, "Company not found")
	case errors.Is(err, service.ErrCompanyRequired),
		errors.Is(err, service.ErrInvalidCommissionRate),
		errors.Is(err, service.ErrPasswordTooShort):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Email and first name are required")
	case errors.Is(err, service.ErrSelfDemotion):
		apperrors.Conflict(c, apperrors.ResourceConflict, "You cannot remove your own admin access")
	default:
		middleware.GetLoggerFromContext(c).Error("User admin request failed", err)
		apperrors.ParseAndRespond(c, err, "user")
	}
}

// ListUsers
// GET /api/v1/admin/users
func (ctrl *AdminUserController) ListUsers(c *gin.Context) {
	limit, offset := pageParams(c)
	filter := repository.UserFilter{Search: c.Query("search"), Limit: limit, Offset: offset}
	if raw := c.Query("role"); raw != "" {
		role := model.UserRole(raw)
		filter.Role = &role
	}

	users, total, err := ctrl.userService.ListUsers(filter)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":     users,
		"total":     total,
		"page":      offset/limit + 1,
		"page_size": limit,
	})
}

// GetUser
// GET /api/v1/admin/users/:id
func (ctrl *AdminUserController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := ctrl.userService.GetUser(id)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// CreateUser
// POST /api/v1/admin/users
func (ctrl *AdminUserController) CreateUser(c *gin.Context) {
	var input service.UserAdminInput
	if !bindInput(c, &input) {
		return
	}
	user, err := ctrl.userService.CreateUser(input)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// UpdateUser changes profile fields, role, company and commission rate
// PUT /api/v1/admin/users/:id
func (ctrl *AdminUserController) UpdateUser(c *gin.Context) {
	actor, ok := resolveActor(c, middleware.GetLoggerFromContext(c), ctrl.authService)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input service.UserAdminInput
	if !bindInput(c, &input) {
		return
	}
	user, err := ctrl.userService.UpdateUser(actor, id, input)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUser
// DELETE /api/v1/admin/users/:id
func (ctrl *AdminUserController) DeleteUser(c *gin.Context) {
	actor, ok := resolveActor(c, middleware.GetLoggerFromContext(c), ctrl.authService)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.userService.DeleteUser(actor, id); err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
