package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/controllers"
	"github.com/vnkhanh/e-learning-backend/middleware"
	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/services"
	"github.com/vnkhanh/e-learning-backend/storage"
	"github.com/vnkhanh/e-learning-backend/ws"
)

// Deps carries everything the route table wires into handlers.
type Deps struct {
	DB       *gorm.DB
	Auth     *services.AuthService
	Sessions *services.SessionService
	Storage  storage.Storage // nil disables uploads
	Limiter  *middleware.RateLimiter
	Upgrader websocket.Upgrader
}

// NewEngine returns a bare engine that reads X-Forwarded-For only from
// trustedProxies. With none, ClientIP is the socket address.
func NewEngine(trustedProxies []string) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	return r, nil
}

func SetupRouter(r *gin.Engine, d Deps) *gin.Engine {
	dbm := middleware.DBMiddleware(d.DB)
	requireAuth := middleware.AuthMiddleware(d.Sessions)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	teaching := middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin)

	r.GET("/ping", controllers.Ping)
	r.GET("/health", dbm, controllers.HealthCheck)

	authCtl := controllers.NewAuthController(d.Auth)
	courses := controllers.NewCourseController(d.Storage)
	contents := controllers.NewContentController(d.Storage)

	auth := r.Group("/auth")
	if d.Limiter != nil {
		auth.Use(d.Limiter.Middleware())
	}
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
		auth.POST("/verify-otp", authCtl.VerifyOTP)
		auth.POST("/resend-otp", authCtl.ResendOTP)
		auth.POST("/forgot-password", authCtl.ForgotPassword)
		auth.POST("/reset-password", authCtl.ResetPassword)
		auth.POST("/google", authCtl.GoogleLogin)

		auth.POST("/change-password", requireAuth, authCtl.ChangePassword)
		auth.GET("/profile", requireAuth, authCtl.GetProfile)
		auth.PUT("/profile", requireAuth, authCtl.UpdateProfile)
		auth.POST("/become-instructor", requireAuth, authCtl.BecomeInstructor)
	}

	r.GET("/profile", requireAuth, controllers.Me)

	admin := r.Group("/admin", requireAuth, adminOnly, dbm)
	{
		admin.GET("/dashboard", controllers.AdminDashboard)
	}

	categories := r.Group("/categories", requireAuth, dbm)
	{
		categories.GET("", controllers.GetCategories)
		categories.GET("/:id", controllers.GetCategoryByID)
		categories.POST("", adminOnly, controllers.CreateCategory)
		categories.PUT("/:id", adminOnly, controllers.UpdateCategory)
		categories.DELETE("/:id", adminOnly, controllers.DeleteCategory)
	}

	api := r.Group("/api", dbm)

	// public catalogue
	public := api.Group("", middleware.OptionalAuthMiddleware(d.Sessions))
	{
		public.GET("/courses", courses.List)
		public.GET("/courses/:courseId", courses.Get)
		public.GET("/content/:courseId", contents.ListByCourse)
		public.GET("/reviews/course/:courseId", controllers.GetCourseReviews)
	}

	user := api.Group("", requireAuth)
	{
		user.POST("/courses", teaching, courses.Create)
		user.PUT("/courses/:courseId", teaching, courses.Update)
		user.DELETE("/courses/:courseId", teaching, courses.Delete)
		user.POST("/courses/:courseId/image", teaching, courses.UploadImage)

		user.POST("/content", teaching, contents.Add)
		user.POST("/content/upload", teaching, contents.Upload)
		user.PUT("/content/:contentId", teaching, contents.Update)
		user.DELETE("/content/:contentId", teaching, contents.Delete)

		user.POST("/enrollments", controllers.EnrollUser)
		user.GET("/enrollments/user/:userId", middleware.RequireSelfOrAdmin("userId"), controllers.GetUserEnrollments)
		user.PUT("/enrollments/:enrollmentId", controllers.UpdateProgress)
		user.DELETE("/enrollments/:enrollmentId", controllers.DeleteEnrollment)

		user.POST("/reviews", controllers.CreateReview)
		user.PUT("/reviews/:reviewId", controllers.UpdateReview)
		user.DELETE("/reviews/:reviewId", controllers.DeleteReview)

		user.POST("/wishlist", controllers.AddToWishlist)
		user.GET("/wishlist/user/:userId", middleware.RequireSelfOrAdmin("userId"), controllers.GetWishlist)
		user.GET("/wishlist/check/:userId/:courseId", middleware.RequireSelfOrAdmin("userId"), controllers.CheckWishlist)
		user.DELETE("/wishlist/:wishlistId", controllers.RemoveFromWishlist)

		user.POST("/cart", controllers.AddToCart)
		user.GET("/cart/user/:userId", middleware.RequireSelfOrAdmin("userId"), controllers.GetCart)
		user.DELETE("/cart/item/:cartItemId", controllers.RemoveFromCart)
		user.DELETE("/cart/user/:userId", middleware.RequireSelfOrAdmin("userId"), controllers.ClearCart)

		user.GET("/notifications", controllers.GetNotifications)
		user.PATCH("/notifications/read-all", controllers.MarkAllAsRead)
		user.PATCH("/notifications/:id/read", controllers.MarkNotificationAsRead)
	}

	r.GET("/ws/notifications", ws.HandleUserWebSocket(ws.H, d.Sessions, d.Upgrader))

	return r
}
