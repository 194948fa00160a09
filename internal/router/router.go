package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mithaqq/mithaqq-backend/config"
	"github.com/mithaqq/mithaqq-backend/internal/app/controller"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/middleware"
)

// Controllers groups every HTTP handler set the router mounts.
type Controllers struct {
	Auth         *controller.AuthController
	Catalog      *controller.CatalogController
	Cart         *controller.CartController
	Checkout     *controller.CheckoutController
	Order        *controller.OrderController
	Review       *controller.ReviewController
	Favorite     *controller.FavoriteController
	Marketer     *controller.MarketerController
	Admin        *controller.AdminController
	AdminCatalog *controller.AdminCatalogController
	AdminUsers   *controller.AdminUserController
	Upload       *controller.UploadController
	OrderFeed    *controller.OrderFeedController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

func NewRouter(controllers Controllers, authMiddleware *middleware.AuthMiddleware, cfg *config.Config) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "MITHAQQ API is running",
		})
	})

	r.checkoutRoutes(router)

	v1 := router.Group("/api/v1")
	r.publicRoutes(v1)
	r.customerRoutes(v1)
	r.marketerRoutes(v1)
	r.adminRoutes(v1)

	return router
}

// checkoutRoutes keeps the storefront's historical checkout paths.
func (r *Router) checkoutRoutes(router *gin.Engine) {
	ctl := r.controllers
	authenticated := r.authMiddleware.Authenticate()

	checkout := router.Group("/Checkout")
	checkout.Use(authenticated)
	{
		checkout.GET("/Index", ctl.Checkout.Index)
		checkout.GET("/CourseCheckout", ctl.Checkout.CourseCheckout)
		checkout.POST("/PlaceOrder", ctl.Checkout.PlaceOrder)
		checkout.GET("/StripeSuccess", ctl.Checkout.StripeSuccess)
	}

	api := router.Group("/api")
	{
		api.GET("/checkout/shippingcost/:zoneId", ctl.Checkout.ShippingCost)
		api.POST("/checkout/create-paypal-order", authenticated, ctl.Checkout.CreatePayPalOrder)
		api.POST("/checkout/capture-paypal-order", authenticated, ctl.Checkout.CapturePayPalOrder)
		api.POST("/checkout/create-stripe-session", authenticated, ctl.Checkout.CreateStripeSession)
		api.POST("/reviews", authenticated, ctl.Review.CreateReview)
	}
}

func (r *Router) publicRoutes(v1 *gin.RouterGroup) {
	ctl := r.controllers

	auth := v1.Group("/auth")
	{
		auth.POST("/register", ctl.Auth.Register)
		auth.POST("/login", ctl.Auth.Login)
		auth.POST("/refresh", ctl.Auth.RefreshToken)
		auth.GET("/me", r.authMiddleware.Authenticate(), ctl.Auth.GetMe)
		auth.PUT("/me", r.authMiddleware.Authenticate(), ctl.Auth.UpdateMe)
		auth.POST("/logout", r.authMiddleware.Authenticate(), ctl.Auth.Logout)
	}

	products := v1.Group("/products")
	{
		products.GET("", ctl.Catalog.ListProducts)
		products.GET("/:id", ctl.Catalog.GetProduct)
	}

	courses := v1.Group("/courses")
	{
		courses.GET("", ctl.Catalog.ListCourses)
		courses.GET("/:id", ctl.Catalog.GetCourse)
		courses.GET("/:id/lessons/:lessonId/video", r.authMiddleware.Authenticate(), ctl.Catalog.GetLessonVideo)
	}

	packages := v1.Group("/travel-packages")
	{
		packages.GET("", ctl.Catalog.ListPackages)
		packages.GET("/:id", ctl.Catalog.GetPackage)
	}

	v1.GET("/categories", ctl.Catalog.ListCategories)
	v1.GET("/companies", ctl.Catalog.ListCompanies)
	v1.GET("/companies/:id", ctl.Catalog.GetCompany)
	v1.GET("/blog", ctl.Catalog.ListBlogPosts)
	v1.GET("/blog/:id", ctl.Catalog.GetBlogPost)
	v1.GET("/shipping-zones", ctl.Admin.ListShippingZones)
	v1.GET("/reviews/:type/:id", ctl.Review.GetItemReviews)
}

func (r *Router) customerRoutes(v1 *gin.RouterGroup) {
	ctl := r.controllers

	cart := v1.Group("/cart")
	cart.Use(r.authMiddleware.Authenticate())
	{
		cart.GET("", ctl.Cart.GetCart)
		cart.GET("/count", ctl.Cart.GetCartCount)
		cart.POST("", ctl.Cart.AddToCart)
		cart.PUT("/:id", ctl.Cart.UpdateCartItem)
		cart.DELETE("/:id", ctl.Cart.RemoveFromCart)
	}

	orders := v1.Group("/orders")
	orders.Use(r.authMiddleware.Authenticate())
	{
		orders.GET("", ctl.Order.GetOrders)
		orders.GET("/:id", ctl.Order.GetOrderByID)
	}

	reviews := v1.Group("/reviews")
	reviews.Use(r.authMiddleware.Authenticate())
	{
		reviews.POST("", ctl.Review.CreateReview)
	}

	favorites := v1.Group("/favorites")
	favorites.Use(r.authMiddleware.Authenticate())
	{
		favorites.GET("", ctl.Favorite.GetFavorites)
		favorites.POST("/:type/:id", ctl.Favorite.AddFavorite)
		favorites.DELETE("/:type/:id", ctl.Favorite.RemoveFavorite)
	}
}

func (r *Router) marketerRoutes(v1 *gin.RouterGroup) {
	ctl := r.controllers

	marketer := v1.Group("/marketer")
	marketer.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(model.RoleMarketer))
	{
		marketer.GET("/dashboard", ctl.Marketer.Dashboard)
		marketer.GET("/packages", ctl.Marketer.ListPackages)
		marketer.POST("/packages/:productId", ctl.Marketer.AddPackage)
		marketer.DELETE("/packages/:productId", ctl.Marketer.RemovePackage)
	}
}

func (r *Router) adminRoutes(v1 *gin.RouterGroup) {
	ctl := r.controllers
	catalogManagers := r.authMiddleware.RequireRole(model.RoleAdmin, model.RoleCompanyAdmin)

	admin := v1.Group("/admin")
	admin.Use(r.authMiddleware.Authenticate())
	{
		// company admins share the catalog endpoints, scoped to their company
		admin.POST("/products", catalogManagers, ctl.AdminCatalog.CreateProduct)
		admin.PUT("/products/:id", catalogManagers, ctl.AdminCatalog.UpdateProduct)
		admin.DELETE("/products/:id", catalogManagers, ctl.AdminCatalog.DeleteProduct)
		admin.POST("/courses", catalogManagers, ctl.AdminCatalog.CreateCourse)
		admin.PUT("/courses/:id", catalogManagers, ctl.AdminCatalog.UpdateCourse)
		admin.DELETE("/courses/:id", catalogManagers, ctl.AdminCatalog.DeleteCourse)
		admin.POST("/courses/:id/lessons", catalogManagers, ctl.AdminCatalog.AddLesson)
		admin.PUT("/courses/:id/lessons/:lessonId", catalogManagers, ctl.AdminCatalog.UpdateLesson)
		admin.DELETE("/courses/:id/lessons/:lessonId", catalogManagers, ctl.AdminCatalog.DeleteLesson)
		admin.POST("/travel-packages", catalogManagers, ctl.AdminCatalog.CreatePackage)
		admin.PUT("/travel-packages/:id", catalogManagers, ctl.AdminCatalog.UpdatePackage)
		admin.DELETE("/travel-packages/:id", catalogManagers, ctl.AdminCatalog.DeletePackage)
		admin.POST("/uploads/presigned-url", catalogManagers, ctl.Upload.GeneratePresignedURL)
	}

	adminOnly := admin.Group("")
	adminOnly.Use(r.authMiddleware.RequireRole(model.RoleAdmin))
	{
		adminOnly.GET("/stats", ctl.Admin.Stats)
		adminOnly.GET("/analytics", ctl.Admin.Analytics)

		adminOnly.GET("/orders", ctl.Admin.ListOrders)
		adminOnly.GET("/orders/export", ctl.Admin.ExportOrders)
		adminOnly.GET("/orders/feed", ctl.OrderFeed.Feed)
		adminOnly.GET("/orders/:id", ctl.Admin.GetOrder)
		adminOnly.PUT("/orders/:id/status", ctl.Admin.UpdateOrderStatus)

		adminOnly.GET("/reviews", ctl.Review.ListReviews)
		adminOnly.DELETE("/reviews/:id", ctl.Review.DeleteReview)

		adminOnly.POST("/shipping-zones", ctl.Admin.CreateShippingZone)
		adminOnly.PUT("/shipping-zones/:id", ctl.Admin.UpdateShippingZone)
		adminOnly.DELETE("/shipping-zones/:id", ctl.Admin.DeleteShippingZone)

		adminOnly.GET("/users", ctl.AdminUsers.ListUsers)
		adminOnly.POST("/users", ctl.AdminUsers.CreateUser)
		adminOnly.GET("/users/:id", ctl.AdminUsers.GetUser)
		adminOnly.PUT("/users/:id", ctl.AdminUsers.UpdateUser)
		adminOnly.DELETE("/users/:id", ctl.AdminUsers.DeleteUser)

		adminOnly.POST("/categories", ctl.AdminCatalog.CreateCategory)
		adminOnly.GET("/categories/:id", ctl.AdminCatalog.GetCategory)
		adminOnly.PUT("/categories/:id", ctl.AdminCatalog.UpdateCategory)
		adminOnly.DELETE("/categories/:id", ctl.AdminCatalog.DeleteCategory)
		adminOnly.POST("/companies", ctl.AdminCatalog.CreateCompany)
		adminOnly.PUT("/companies/:id", ctl.AdminCatalog.UpdateCompany)
		adminOnly.DELETE("/companies/:id", ctl.AdminCatalog.DeleteCompany)
		adminOnly.POST("/blog", ctl.AdminCatalog.CreateBlogPost)
		adminOnly.PUT("/blog/:id", ctl.AdminCatalog.UpdateBlogPost)
		adminOnly.DELETE("/blog/:id", ctl.AdminCatalog.DeleteBlogPost)
	}

	company := v1.Group("/company")
	company.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(model.RoleCompanyAdmin))
	{
		company.GET("/stats", ctl.Admin.Stats)
		company.GET("/products", ctl.AdminCatalog.CompanyProducts)
		company.GET("/courses", ctl.AdminCatalog.CompanyCourses)
		company.GET("/travel-packages", ctl.AdminCatalog.CompanyPackages)
		company.GET("/shipping-zones", ctl.Admin.ListShippingZones)
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
		return cors.New(cfg)
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			// credentials cannot be combined with a literal wildcard
			cfg.AllowOriginFunc = func(string) bool { return true }
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = allowedOrigins
	return cors.New(cfg)
}
