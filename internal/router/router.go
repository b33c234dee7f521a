package router

import (
	"github.com/casarossa/casarossa-backend/config"
	"github.com/casarossa/casarossa-backend/internal/app/controller"
	"github.com/casarossa/casarossa-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController     *controller.AuthController
	menuController     *controller.MenuController
	cartController     *controller.CartController
	checkoutController *controller.CheckoutController
	uploadController   *controller.UploadController
	feedController     *controller.FeedController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	menuController *controller.MenuController,
	cartController *controller.CartController,
	checkoutController *controller.CheckoutController,
	uploadController *controller.UploadController,
	feedController *controller.FeedController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		menuController:     menuController,
		cartController:     cartController,
		checkoutController: checkoutController,
		uploadController:   uploadController,
		feedController:     feedController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Casa Rossa API is running",
		})
	})

	// Live featured-menu feed for the storefront
	router.GET("/ws/menu", r.authMiddleware.Authenticate(), r.feedController.MenuFeed)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
		}

		menu := v1.Group("/menu")
		{
			menu.GET("/featured", r.menuController.GetFeatured)
			menu.GET("/:id", r.menuController.GetMenuItem)
		}

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/items", r.cartController.AddToCart)
			cart.PUT("/items/:id", r.cartController.UpdateCartItem)
			cart.DELETE("/items/:id", r.cartController.RemoveFromCart)
			cart.PUT("/sidebar", r.cartController.SetSidebar)
		}

		v1.POST("/checkout",
			r.authMiddleware.Authenticate(),
			r.checkoutController.Checkout,
		)

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireAdmin())
		{
			admin.GET("/menu", r.menuController.ListMenuItems)
			admin.POST("/menu", r.menuController.CreateMenuItem)
			admin.PUT("/menu/:id", r.menuController.UpdateMenuItem)
			admin.DELETE("/menu/:id", r.menuController.DeleteMenuItem)
			admin.GET("/menu/export", r.menuController.ExportMenu)
			admin.POST("/upload/presigned-url", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
