package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/internal/app/service"
	apperrors "github.com/mithaqq/mithaqq-backend/internal/errors"
	"github.com/mithaqq/mithaqq-backend/internal/middleware"
)

// CatalogController serves the public catalog reads.
type CatalogController struct {
	productService service.ProductService
	courseService  service.CourseService
	packageService service.TravelPackageService
	contentService service.ContentService
}

func NewCatalogController(
	productService service.ProductService,
	courseService service.CourseService,
	packageService service.TravelPackageService,
	contentService service.ContentService,
) *CatalogController {
	return &CatalogController{
		productService: productService,
		courseService:  courseService,
		packageService: packageService,
		contentService: contentService,
	}
}

func listResponse(items interface{}, total int64, c *gin.Context) gin.H {
	limit, offset := pageParams(c)
	return gin.H{
		"items":     items,
		"total":     total,
		"page":      offset/limit + 1,
		"page_size": limit,
	}
}

// ListProducts
// GET /api/v1/products
func (ctrl *CatalogController) ListProducts(c *gin.Context) {
	products, total, err := ctrl.productService.ListProducts(catalogFilter(c))
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list products", err)
		apperrors.InternalError(c, "Failed to fetch products")
		return
	}
	c.JSON(http.StatusOK, listResponse(products, total, c))
}

// GetProduct
// GET /api/v1/products/:id
func (ctrl *CatalogController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := ctrl.productService.GetProduct(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Product not found")
			return
		}
		apperrors.ParseAndRespond(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// ListCourses
// GET /api/v1/courses
func (ctrl *CatalogController) ListCourses(c *gin.Context) {
	courses, total, err := ctrl.courseService.ListCourses(catalogFilter(c))
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch courses")
		return
	}
	c.JSON(http.StatusOK, listResponse(courses, total, c))
}

// GetCourse includes the lesson outline. Video URLs are served separately.
// GET /api/v1/courses/:id
func (ctrl *CatalogController) GetCourse(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	course, err := ctrl.courseService.GetCourse(id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Course not found")
			return
		}
		apperrors.ParseAndRespond(c, err, "course")
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

// GetLessonVideo returns a signed playlist URL for enrolled users
// GET /api/v1/courses/:id/lessons/:lessonId/video
func (ctrl *CatalogController) GetLessonVideo(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c, log)
	if !ok {
		return
	}
	role, _ := middleware.GetUserRole(c)
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "lessonId")
	if !ok {
		return
	}

	url, err := ctrl.courseService.LessonVideoURL(userID, role, courseID, lessonID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotOwned):
			apperrors.Forbidden(c, "Enroll in the course to watch its lessons")
		case errors.Is(err, service.ErrLessonNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Lesson not found")
		case errors.Is(err, service.ErrVideoUnavailable):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "This lesson has no video")
		default:
			log.Error("Failed to build lesson video URL", err, map[string]interface{}{
				"course_id": courseID,
				"lesson_id": lessonID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ListPackages
// GET /api/v1/travel-packages
func (ctrl *CatalogController) ListPackages(c *gin.Context) {
	packages, total, err := ctrl.packageService.ListPackages(catalogFilter(c))
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch travel packages")
		return
	}
	c.JSON(http.StatusOK, listResponse(packages, total, c))
}

// GetPackage
// GET /api/v1/travel-packages/:id
func (ctrl *CatalogController) GetPackage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	pkg, err := ctrl.packageService.GetPackage(id)
	if err != nil {
		if errors.Is(err, service.ErrTravelPackageNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Travel package not found")
			return
		}
		apperrors.ParseAndRespond(c, err, "travel_package")
		return
	}
	c.JSON(http.StatusOK, gin.H{"travel_package": pkg})
}

// ListCategories
// GET /api/v1/categories
func (ctrl *CatalogController) ListCategories(c *gin.Context) {
	categories, err := ctrl.contentService.ListCategories()
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListCompanies
// GET /api/v1/companies
func (ctrl *CatalogController) ListCompanies(c *gin.Context) {
	companies, err := ctrl.contentService.ListCompanies()
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

// GetCompany
// GET /api/v1/companies/:id
func (ctrl *CatalogController) GetCompany(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	company, err := ctrl.contentService.GetCompany(id)
	if err != nil {
		if errors.Is(err, service.ErrCompanyNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Company not found")
			return
		}
		apperrors.ParseAndRespond(c, err, "company")
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

// ListBlogPosts returns the newest posts, ?limit= caps the count
// GET /api/v1/blog
func (ctrl *CatalogController) ListBlogPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	posts, err := ctrl.contentService.ListBlogPosts(limit)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetBlogPost
// GET /api/v1/blog/:id
func (ctrl *CatalogController) GetBlogPost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	post, err := ctrl.contentService.GetBlogPost(id)
	if err != nil {
		if errors.Is(err, service.ErrBlogPostNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Blog post not found")
			return
		}
		apperrors.ParseAndRespond(c, err, "blog_post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}
