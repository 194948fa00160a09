package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/internal/app/service"
	apperrors "github.com/mithaqq/mithaqq-backend/internal/errors"
	"github.com/mithaqq/mithaqq-backend/internal/middleware"
)

// AdminCatalogController manages catalog content. Products, courses and travel
// packages are company scoped for company admins.
type AdminCatalogController struct {
	authService    service.AuthService
	productService service.ProductService
	courseService  service.CourseService
	packageService service.TravelPackageService
	contentService service.ContentService
}

func NewAdminCatalogController(
	authService service.AuthService,
	productService service.ProductService,
	courseService service.CourseService,
	packageService service.TravelPackageService,
	contentService service.ContentService,
) *AdminCatalogController {
	return &AdminCatalogController{
		authService:    authService,
		productService: productService,
		courseService:  courseService,
		packageService: packageService,
		contentService: contentService,
	}
}

func respondCatalogError(c *gin.Context, err error, resource string) {
	switch {
	case errors.Is(err, service.ErrCompanyScope):
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzCompanyScope, "You can only manage your own company's catalog")
	case errors.Is(err, service.ErrInvalidInput):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid "+resource+" data")
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrLessonNotFound),
		errors.Is(err, service.ErrTravelPackageNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrCompanyNotFound),
		errors.Is(err, service.ErrBlogPostNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, err.Error())
	case errors.Is(err, service.ErrCategoryExists):
		apperrors.Conflict(c, apperrors.ResourceAlreadyExists, "Category already exists")
	case errors.Is(err, service.ErrCategoryInUse),
		errors.Is(err, service.ErrCompanyInUse):
		apperrors.Conflict(c, apperrors.ResourceConflict, err.Error())
	default:
		middleware.GetLoggerFromContext(c).Error("Catalog admin request failed", err, map[string]interface{}{
			"resource": resource,
		})
		apperrors.ParseAndRespond(c, err, resource)
	}
}

func bindInput(c *gin.Context, input interface{}) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid catalog payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return false
	}
	return true
}

// CreateProduct
// POST /api/v1/admin/products
func (ctrl *AdminCatalogController) CreateProduct(c *gin.Context) {
	actor, ok := resolveActor(c, middleware.GetLoggerFromContext(c), ctrl.authService)
	if !ok {
		return
	}
	var input service.ProductInput
	if !bindInput(c, &input) {
		return
	}
	product, err := ctrl.productService.CreateProduct(actor, input)
	if err != nil {
		respondCatalogError(c, err, "product")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct
// PUT /api/v1/admin/products/:id
func (ctrl *AdminCatalogController) UpdateProduct(c *gin.Context) {
	actor, ok := resolveActor(c, middleware.GetLoggerFromContext(c), ctrl.authService)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input service.ProductInput
	if !bindInput(c, &input) {
		return
	}
	product, err := ctrl.productService.UpdateProduct(actor, id, input)
	if err != nil {
		respondCatalogError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct
// DELETE /api/v1/admin/products/:id
func (ctrl *AdminCatalogController) DeleteProduct(c *gin.Context) {
	actor, ok := resolveActor(c, middleware.GetLoggerFromContext(c), ctrl.authService)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.productService.DeleteProduct(actor, id); err != nil {
		respondCatalogError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// CreateCourse
// POST /api/v1/admin/courses
func (ctrl *AdminCatalogController) CreateCourse(c *gin.Context) {
	actor, ok := resolveActor(c, middleware.GetLoggerFromContext(c), ctrl.authService)
	if !ok {
		return
	}
	var input service.CourseInput
	if !bindInput(c, &input) {
		return
	}
	course, err := ctrl.courseService.CreateCourse(actor, input)
	if err != nil {
		respondCatalogError(c, err, "course")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"course": course})
}

// UpdateCourse
// PUT /api/v1/admin/courses/:id
func (ctrl *AdminCatalogController) UpdateCourse(c *gin.Context) {
	actor, ok := resolveActor(c, middleware.GetLoggerFromContext(c), ctrl.authService)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input service.CourseInput
	if !bindInput(c, &input) {
		return
	}
	course, err := ctrl.courseService.UpdateCourse(actor, id, input)
	if err != nil {
		respondCatalogError(c, err, "course")
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

// DeleteCourse
// DELETE /api/v1/admin/courses/:id
func (ctrl *AdminCatalogController) DeleteCourse(c *gin.Context) {
	actor, ok := resolveActor(c, middleware.GetLoggerFromContext(c), ctrl.authService)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.courseService.DeleteCourse(actor, id); err != nil {
		respondCatalogError(c, err, "course")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted"})
}

// AddLesson
// POST /api/v1/admin/courses/:id/lessons
func (ctrl *AdminCatalogController) AddLesson(c *gin.Context) {
	actor, ok := resolveActor(c, middleware.GetLoggerFromContext(c), ctrl.authService)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input service.LessonInput
	if !bindInput(c, &input) {
		return
	}
	lesson, err := ctrl.courseService.AddLesson(actor, courseID, input)
	if err != nil {
		respondCatalogError(c, err, "lesson")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"lesson": lesson})
}

// UpdateLesson
// PUT /api/v1/admin/courses/:id/lessons/:lessonId
func (ctrl *AdminCatalogController) UpdateLesson(c *gin.Context) {
	actor, ok := resolveActor(c, middleware.GetLoggerFromContext(c), ctrl.authService)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "lessonId")
	if !ok {
		return
	}
	var input service.LessonInput
	if !bindInput(c, &input) {
		return
	}
	lesson, err := ctrl.courseService.UpdateLesson(actor, courseID, lessonID, input)
	if err != nil {
		respondCatalogError(c, err, "lesson")
		return
	}
	c.JSON(http.StatusOK, gin.H{"lesson": lesson})
}

// DeleteLesson
// DELETE /api/v1/admin/courses/:id/lessons/:lessonId
func (ctrl *AdminCatalogController) DeleteLesson(c *gin.Context) {
	actor, ok := resolveActor(c, middleware.GetLoggerFromContext(c), ctrl.authService)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "lessonId")
	if !ok {
		return
	}
	if err := ctrl.courseService.DeleteLesson(actor, courseID, lessonID); err != nil {
		respondCatalogError(c, err, "lesson")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lesson deleted"})
}

// CreatePackage
// POST /api/v1/admin/travel-packages
func (ctrl *AdminCatalogController) CreatePackage(c *gin.Context) {
	actor, ok := resolveActor(c, middleware.GetLoggerFromContext(c), ctrl.authService)
	if !ok {
		return
	}
	var input service.TravelPackageInput
	if !bindInput(c, &input) {
		return
	}
	pkg, err := ctrl.packageService.CreatePackage(actor, input)
	if err != nil {
		respondCatalogError(c, err, "travel_package")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"travel_package": pkg})
}

// UpdatePackage
// PUT /api/v1/admin/travel-packages/:id
func (ctrl *AdminCatalogController) UpdatePackage(c *gin.Context) {
	actor, ok := resolveActor(c, middleware.GetLoggerFromContext(c), ctrl.authService)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input service.TravelPackageInput
	if !bindInput(c, &input) {
		return
	}
	pkg, err := ctrl.packageService.UpdatePackage(actor, id, input)
	if err != nil {
		respondCatalogError(c, err, "travel_package")
		return
	}
	c.JSON(http.StatusOK, gin.H{"travel_package": pkg})
}

// DeletePackage
// DELETE /api/v1/admin/travel-packages/:id
func (ctrl *AdminCatalogController) DeletePackage(c *gin.Context) {
	actor, ok := resolveActor(c, middleware.GetLoggerFromContext(c), ctrl.authService)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.packageService.DeletePackage(actor, id); err != nil {
		respondCatalogError(c, err, "travel_package")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Travel package deleted"})
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateCategory
// POST /api/v1/admin/categories
func (ctrl *AdminCatalogController) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if !bindInput(c, &req) {
		return
	}
	category, err := ctrl.contentService.CreateCategory(req.Name)
	if err != nil {
		respondCatalogError(c, err, "category")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetCategory
// GET /api/v1/admin/categories/:id
func (ctrl *AdminCatalogController) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := ctrl.contentService.GetCategory(id)
	if err != nil {
		respondCatalogError(c, err, "category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategory renames a category
// PUT /api/v1/admin/categories/:id
func (ctrl *AdminCatalogController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CreateCategoryRequest
	if !bindInput(c, &req) {
		return
	}
	category, err := ctrl.contentService.UpdateCategory(id, req.Name)
	if err != nil {
		respondCatalogError(c, err, "category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory
// DELETE /api/v1/admin/categories/:id
func (ctrl *AdminCatalogController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.contentService.DeleteCategory(id); err != nil {
		respondCatalogError(c, err, "category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// CreateCompany
// POST /api/v1/admin/companies
func (ctrl *AdminCatalogController) CreateCompany(c *gin.Context) {
	var input service.CompanyInput
	if !bindInput(c, &input) {
		return
	}
	company, err := ctrl.contentService.CreateCompany(input)
	if err != nil {
		respondCatalogError(c, err, "company")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"company": company})
}

// UpdateCompany
// PUT /api/v1/admin/companies/:id
func (ctrl *AdminCatalogController) UpdateCompany(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input service.CompanyInput
	if !bindInput(c, &input) {
		return
	}
	company, err := ctrl.contentService.UpdateCompany(id, input)
	if err != nil {
		respondCatalogError(c, err, "company")
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

// DeleteCompany
// DELETE /api/v1/admin/companies/:id
func (ctrl *AdminCatalogController) DeleteCompany(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.contentService.DeleteCompany(id); err != nil {
		respondCatalogError(c, err, "company")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Company deleted"})
}

// companyFilter pins the catalog filter to the caller's company.
func (ctrl *AdminCatalogController) companyFilter(c *gin.Context) (repository.CatalogFilter, bool) {
	actor, ok := resolveActor(c, middleware.GetLoggerFromContext(c), ctrl.authService)
	if !ok {
		return repository.CatalogFilter{}, false
	}
	filter := catalogFilter(c)
	filter.CompanyID = actor.CompanyScope()
	return filter, true
}

// CompanyProducts lists the caller's company products
// GET /api/v1/company/products
func (ctrl *AdminCatalogController) CompanyProducts(c *gin.Context) {
	filter, ok := ctrl.companyFilter(c)
	if !ok {
		return
	}
	products, total, err := ctrl.productService.ListProducts(filter)
	if err != nil {
		respondCatalogError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, listResponse(products, total, c))
}

// CompanyCourses
// GET /api/v1/company/courses
func (ctrl *AdminCatalogController) CompanyCourses(c *gin.Context) {
	filter, ok := ctrl.companyFilter(c)
	if !ok {
		return
	}
	courses, total, err := ctrl.courseService.ListCourses(filter)
	if err != nil {
		respondCatalogError(c, err, "course")
		return
	}
	c.JSON(http.StatusOK, listResponse(courses, total, c))
}

// CompanyPackages
// GET /api/v1/company/travel-packages
func (ctrl *AdminCatalogController) CompanyPackages(c *gin.Context) {
	filter, ok := ctrl.companyFilter(c)
	if !ok {
		return
	}
	packages, total, err := ctrl.packageService.ListPackages(filter)
	if err != nil {
		respondCatalogError(c, err, "travel_package")
		return
	}
	c.JSON(http.StatusOK, listResponse(packages, total, c))
}

// CreateBlogPost
// POST /api/v1/admin/blog
func (ctrl *AdminCatalogController) CreateBlogPost(c *gin.Context) {
	var input service.BlogPostInput
	if !bindInput(c, &input) {
		return
	}
	post, err := ctrl.contentService.CreateBlogPost(input)
	if err != nil {
		respondCatalogError(c, err, "blog_post")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// UpdateBlogPost
// PUT /api/v1/admin/blog/:id
func (ctrl *AdminCatalogController) UpdateBlogPost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input service.BlogPostInput
	if !bindInput(c, &input) {
		return
	}
	post, err := ctrl.contentService.UpdateBlogPost(id, input)
	if err != nil {
		respondCatalogError(c, err, "blog_post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DeleteBlogPost
// DELETE /api/v1/admin/blog/:id
func (ctrl *AdminCatalogController) DeleteBlogPost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.contentService.DeleteBlogPost(id); err != nil {
		respondCatalogError(c, err, "blog_post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Blog post deleted"})
}
