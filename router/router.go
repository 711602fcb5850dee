package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/otterfood/storefront-app/controllers"
	"github.com/otterfood/storefront-app/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SessionMiddleware())

	userCtrl := controllers.NewUserController(db)
	restaurantCtrl := controllers.NewRestaurantController(db)
	menuCtrl := controllers.NewMenuController(db)
	cartCtrl := controllers.NewCartController(db)
	orderCtrl := controllers.NewOrderController(db, cartCtrl)
	paymentCtrl := controllers.NewPaymentController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// -- STOREFRONT (no auth, session-scoped) --
	r.GET("/restaurants", restaurantCtrl.GetAllRestaurants)
	r.GET("/restaurants/:slug", restaurantCtrl.GetRestaurantBySlug)
	r.GET("/restaurants/:slug/menus", menuCtrl.GetMenusByRestaurant)
	r.GET("/menus/:menu_id", menuCtrl.GetMenuByID)

	// Cart, one per restaurant per session
	r.GET("/restaurants/:slug/cart", cartCtrl.GetCart)
	r.POST("/restaurants/:slug/cart/items", cartCtrl.AddItem)
	r.PATCH("/restaurants/:slug/cart/items/:item_key", cartCtrl.UpdateItem)
	r.PATCH("/restaurants/:slug/cart/items/:item_key/quantity", cartCtrl.UpdateQuantity)
	r.DELETE("/restaurants/:slug/cart/items/:item_key", cartCtrl.RemoveItem)
	r.DELETE("/restaurants/:slug/cart", cartCtrl.ClearCart)

	// Checkout and the session's own orders
	r.POST("/restaurants/:slug/checkout", orderCtrl.Checkout)
	r.GET("/orders", orderCtrl.GetSessionOrders)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)

	// QRIS payment flow
	r.POST("/orders/:order_id/payment", paymentCtrl.CreatePayment)
	r.GET("/orders/:order_id/payment", paymentCtrl.GetPaymentStatus)
	r.POST("/payments/callback", paymentCtrl.PaymentCallback)

	// Live order/payment events
	r.GET("/ws", controllers.HandleWebSocket)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.GET("/users", userCtrl.GetAllUsers)

	// RESTAURANTS
	auth.POST("/restaurants", restaurantCtrl.CreateRestaurant)
	auth.PATCH("/restaurants/:restaurant_id", restaurantCtrl.UpdateRestaurant)

	// MENUS
	auth.POST("/menus", menuCtrl.CreateMenu)
	auth.PATCH("/menus/:menu_id", menuCtrl.UpdateMenu)
	auth.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)

	// ORDERS
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.PATCH("/orders/:order_id", orderCtrl.UpdateOrderStatus)

	// PAYMENTS
	auth.GET("/payments", paymentCtrl.GetAllPayments)

	return r
}
