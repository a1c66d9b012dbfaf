// File: /routes/routes.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"vanlife-api/config"
	"vanlife-api/controllers"
	"vanlife-api/middleware"
	"vanlife-api/repositories"
	"vanlife-api/services"
)

// Dependencies is everything the HTTP surface needs; main builds it once.
type Dependencies struct {
	Config     *config.Config
	Store      repositories.Store
	Tokens     *services.TokenService
	Resets     *services.ResetService
	Hasher     services.PasswordHasher
	Media      *services.MediaStore
	Mailer     services.Mailer
	Dispatcher services.Dispatcher
	Metrics    *middleware.Metrics
	Log        logrus.FieldLogger
	Clock      controllers.Clock
}

// NewRouter builds the engine with the global middleware chain and all routes.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(middleware.ErrorHandler(deps.Log))
	r.Use(middleware.SecurityHeaders())
	r.Use(SetupCORS(deps.Config))
	r.Use(deps.Metrics.Instrument())
	r.Use(middleware.StaticCache("/static"))
	r.Use(middleware.ValidateJSON())

	SetupRoutes(r, deps)
	return r
}

func SetupRoutes(r *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	// Controllers
	authController := controllers.NewAuthController(deps.Store, deps.Hasher, deps.Tokens, deps.Resets, deps.Mailer, deps.Dispatcher, deps.Metrics, cfg, deps.Log)
	userController := controllers.NewUserController(deps.Store, deps.Hasher, deps.Media, deps.Log)
	vanController := controllers.NewVanController(deps.Store, deps.Media, deps.Metrics, cfg, deps.Log)
	bookingController := controllers.NewBookingController(deps.Store, deps.Metrics, deps.Clock, cfg, deps.Log)
	adminController := controllers.NewAdminController(deps.Store, deps.Tokens, deps.Media, cfg, deps.Log)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	r.Static("/static", cfg.StaticFolder)

	// Public routes
	r.POST("/register", authController.Register)
	r.POST("/login", authController.Login)
	r.POST("/sendReset", authController.SendReset)
	r.POST("/validateToken", authController.ValidateToken)
	r.POST("/resetPassword", authController.ResetPassword)
	r.GET("/vans", vanController.ListVans)
	r.GET("/vans/:uuid", vanController.GetVan)
	r.POST("/makeTransaction", bookingController.MakeTransaction)
	r.POST("/makeReview", bookingController.MakeReview)

	r.POST("/refreshToken", middleware.RequireRefresh(deps.Tokens), authController.Refresh)

	// Protected routes
	protected := r.Group("/")
	protected.Use(middleware.RequireAccess(deps.Tokens))
	{
		protected.GET("/getUser", userController.GetUser)
		protected.POST("/uploadAvatar", userController.UploadAvatar)
		protected.PATCH("/updateUser", userController.UpdateUser)
		protected.PATCH("/updatePassword", userController.UpdatePassword)

		protected.POST("/addVan", vanController.AddVan)
		protected.PATCH("/updateVan", vanController.UpdateVan)
		protected.DELETE("/deleteVan", vanController.DeleteVan)
		protected.POST("/deleteVan", vanController.DeleteVan)
		protected.POST("/uploadVanImage", vanController.UploadVanImage)
	}

	// Back-office
	r.GET(middleware.AdminLogin, adminController.LoginForm)
	r.POST(middleware.AdminLogin, adminController.Authorize)
	r.GET("/unauthorize", adminController.Unauthorize)

	admin := r.Group("/admin")
	admin.Use(middleware.AdminSession(deps.Tokens), middleware.PaginationDefaults())
	{
		admin.GET("", adminController.Summary)
		admin.GET("/users", adminController.ListUsers)
		admin.GET("/vans", adminController.ListVans)
		admin.GET("/transactions", adminController.ListTransactions)
		admin.GET("/reviews", adminController.ListReviews)
		admin.DELETE("/vans/:uuid", adminController.DeleteVan)
		admin.DELETE("/transactions/:uuid", adminController.DeleteTransaction)
		admin.DELETE("/reviews/:uuid", adminController.DeleteReview)
	}
}

// SetupCORS allows the configured frontend with credentials, or any origin
// without them when no frontend is configured.
func SetupCORS(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if cfg.FrontendURL == "" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.FrontendURL}
		corsConfig.AllowCredentials = true
	}
	return cors.New(corsConfig)
}
