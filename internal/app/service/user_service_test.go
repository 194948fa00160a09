package service

import (
	"testing"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/internal/db"
	"github.com/mithaqq/mithaqq-backend/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserAdminTest(t *testing.T) (UserAdminService, *gorm.DB, Actor) {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	admin := createTestUser(t, testDB, "admin@example.com", model.RoleAdmin)
	svc := NewUserAdminService(repository.NewUserRepository(testDB), repository.NewCatalogRepository(testDB))
	return svc, testDB, ActorFromUser(admin)
}

func createTestCompany(t *testing.T, testDB *gorm.DB, name string) *model.Company {
	t.Helper()
	company := &model.Company{Name: name}
	require.NoError(t, testDB.Create(company).Error)
	return company
}

func TestUserAdminService_CreateUser(t *testing.T) {
	svc, testDB, _ := setupUserAdminTest(t)
	company := createTestCompany(t, testDB, "Nile Tours")
	rate := decimal.RequireFromString("0.2")

	user, err := svc.CreateUser(UserAdminInput{
		Email:          "  Manager@NileTours.test ",
		Password:       "managerpass",
		FirstName:      "Mona",
		Role:           model.RoleCompanyAdmin,
		CompanyID:      &company.ID,
		CommissionRate: &rate,
	})
	require.NoError(t, err)

	stored, err := repository.NewUserRepository(testDB).FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "manager@niletours.test", stored.Email)
	assert.Equal(t, model.RoleCompanyAdmin, stored.Role)
	require.NotNil(t, stored.CompanyID)
	assert.Equal(t, company.ID, *stored.CompanyID)
	assert.True(t, rate.Equal(stored.CommissionRate))
	assert.True(t, util.VerifyPassword(stored.PasswordHash, "managerpass"))
}

func TestUserAdminService_CreateUser_Rejections(t *testing.T) {
	svc, testDB, _ := setupUserAdminTest(t)
	missing := uint(9999)
	tooHigh := decimal.RequireFromString("1.5")

	tests := []struct {
		name  string
		input UserAdminInput
		want  error
	}{
		{
			name:  "missing first name",
			input: UserAdminInput{Email: "a@example.com", Password: "password1"},
			want:  ErrInvalidInput,
		},
		{
			name:  "short password",
			input: UserAdminInput{Email: "a@example.com", Password: "short", FirstName: "A"},
			want:  ErrPasswordTooShort,
		},
		{
			name:  "unknown role",
			input: UserAdminInput{Email: "a@example.com", Password: "password1", FirstName: "A", Role: "owner"},
			want:  ErrInvalidRole,
		},
		{
			name:  "company admin without company",
			input: UserAdminInput{Email: "a@example.com", Password: "password1", FirstName: "A", Role: model.RoleCompanyAdmin},
			want:  ErrCompanyRequired,
		},
		{
			name:  "company admin of unknown company",
			input: UserAdminInput{Email: "a@example.com", Password: "password1", FirstName: "A", Role: model.RoleCompanyAdmin, CompanyID: &missing},
			want:  ErrCompanyNotFound,
		},
		{
			name:  "commission above one",
			input: UserAdminInput{Email: "a@example.com", Password: "password1", FirstName: "A", Role: model.RoleMarketer, CommissionRate: &tooHigh},
			want:  ErrInvalidCommissionRate,
		},
		{
			name:  "duplicate email",
			input: UserAdminInput{Email: "ADMIN@example.com", Password: "password1", FirstName: "A"},
			want:  ErrEmailAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var count int64
	require.NoError(t, testDB.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUserAdminService_CreateUser_PlainUserDropsCompany(t *testing.T) {
	svc, testDB, _ := setupUserAdminTest(t)
	company := createTestCompany(t, testDB, "Nile Tours")

	user, err := svc.CreateUser(UserAdminInput{
		Email:     "buyer@example.com",
		Password:  "password1",
		FirstName: "Bea",
		CompanyID: &company.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Nil(t, user.CompanyID)
	assert.True(t, model.DefaultCommissionRate.Equal(user.CommissionRate))
}

func TestUserAdminService_UpdateUser(t *testing.T) {
	svc, testDB, admin := setupUserAdminTest(t)
	company := createTestCompany(t, testDB, "Nile Tours")
	target := createTestUser(t, testDB, "agent@example.com", model.RoleUser)

	updated, err := svc.UpdateUser(admin, target.ID, UserAdminInput{Role: model.RoleCompanyAdmin, CompanyID: &company.ID})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCompanyAdmin, updated.Role)
	assert.Equal(t, "Jane", updated.FirstName)
	assert.Equal(t, "agent@example.com", updated.Email)

	// the stored company survives an edit that does not mention it
	updated, err = svc.UpdateUser(admin, target.ID, UserAdminInput{Phone: "+20 100 000 0000"})
	require.NoError(t, err)
	require.NotNil(t, updated.CompanyID)
	assert.Equal(t, company.ID, *updated.CompanyID)
	assert.Equal(t, model.RoleCompanyAdmin, updated.Role)

	rate := decimal.RequireFromString("0.3")
	updated, err = svc.UpdateUser(admin, target.ID, UserAdminInput{Role: model.RoleMarketer, CommissionRate: &rate})
	require.NoError(t, err)
	assert.Nil(t, updated.CompanyID)

	stored, err := repository.NewUserRepository(testDB).FindByID(target.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMarketer, stored.Role)
	assert.Nil(t, stored.CompanyID)
	assert.True(t, rate.Equal(stored.CommissionRate))
	assert.Equal(t, "+20 100 000 0000", stored.Phone)
}

func TestUserAdminService_UpdateUser_Errors(t *testing.T) {
	svc, testDB, admin := setupUserAdminTest(t)
	target := createTestUser(t, testDB, "agent@example.com", model.RoleUser)

	_, err := svc.UpdateUser(admin, 9999, UserAdminInput{FirstName: "Ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.UpdateUser(admin, target.ID, UserAdminInput{Email: "admin@example.com"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = svc.UpdateUser(admin, target.ID, UserAdminInput{Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.UpdateUser(admin, admin.UserID, UserAdminInput{Role: model.RoleUser})
	assert.ErrorIs(t, err, ErrSelfDemotion)

	// an admin may still edit their own profile
	self, err := svc.UpdateUser(admin, admin.UserID, UserAdminInput{FirstName: "Root"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, self.Role)
	assert.Equal(t, "Root", self.FirstName)
}

func TestUserAdminService_DeleteUser(t *testing.T) {
	svc, testDB, admin := setupUserAdminTest(t)
	target := createTestUser(t, testDB, "agent@example.com", model.RoleUser)

	assert.ErrorIs(t, svc.DeleteUser(admin, admin.UserID), ErrSelfDemotion)
	require.NoError(t, svc.DeleteUser(admin, target.ID))
	assert.ErrorIs(t, svc.DeleteUser(admin, target.ID), ErrUserNotFound)

	_, err := svc.GetUser(target.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserAdminService_ListUsers(t *testing.T) {
	svc, testDB, _ := setupUserAdminTest(t)
	createTestUser(t, testDB, "marketer@example.com", model.RoleMarketer)
	createTestUser(t, testDB, "buyer@example.com", model.RoleUser)

	users, total, err := svc.ListUsers(repository.UserFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 3)

	role := model.RoleMarketer
	users, total, err = svc.ListUsers(repository.UserFilter{Role: &role, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "marketer@example.com", users[0].Email)

	users, _, err = svc.ListUsers(repository.UserFilter{Search: "buyer", Limit: 10})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "buyer@example.com", users[0].Email)

	bogus := model.UserRole("owner")
	_, _, err = svc.ListUsers(repository.UserFilter{Role: &bogus, Limit: 10})
	assert.ErrorIs(t, err, ErrInvalidRole)
}
