package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/dinein-app/config"
	"github.com/yeremiapane/dinein-app/controllers"
	"github.com/yeremiapane/dinein-app/middlewares"
	"github.com/yeremiapane/dinein-app/realtime"
	"github.com/yeremiapane/dinein-app/services"
)

func SetupRouter(db *gorm.DB, hub *realtime.Hub, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Services
	qrSvc := services.NewQRService(db)
	sessionSvc := services.NewSessionService(db, qrSvc)
	orderSvc := services.NewOrderService(db, hub)
	gatewaySvc := services.NewGatewayService(services.LoadGatewayConfig())
	paymentSvc := services.NewPaymentService(db, orderSvc, gatewaySvc)

	// Controllers
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db, qrSvc, cfg.AppBaseURL)
	sessionCtrl := controllers.NewSessionController(sessionSvc)
	orderCtrl := controllers.NewOrderController(orderSvc)
	paymentCtrl := controllers.NewPaymentController(paymentSvc)
	wsCtrl := controllers.NewWSController(hub, sessionSvc)

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

	// -- TAMU (tanpa auth, diikat lewat token QR / sesi) --
	r.GET("/tables/:table_id/scan", sessionCtrl.ScanTable)
	r.GET("/tables/:table_id/session", sessionCtrl.GetActiveSession)
	r.POST("/sessions/:session_id/orders", orderCtrl.CreateOrder)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	r.POST("/orders/:order_id/bill", orderCtrl.RequestBill)
	r.POST("/orders/:order_id/pay", paymentCtrl.InitiatePayment)
	r.GET("/orders/:order_id/payment-status", paymentCtrl.CheckStatus)

	// Webhook provider: signature di payload adalah satu-satunya autentikasi
	r.POST("/payments/callback", paymentCtrl.HandleCallback)

	// Websocket tamu: hanya event sesi miliknya
	r.GET("/ws/session/:session_id", wsCtrl.GuestSocket)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)

	// TABLES
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.POST("/tables", middlewares.RequireRoles("admin"), tableCtrl.CreateTable)
	auth.PATCH("/tables/:table_id", middlewares.RequireRoles("admin"), tableCtrl.UpdateTable)
	auth.POST("/tables/:table_id/qr/regenerate", middlewares.RequireRoles("admin"), tableCtrl.RegenerateQR)
	auth.POST("/tables/qr/regenerate-all", middlewares.RequireRoles("admin"), tableCtrl.RegenerateAllQR)

	// ORDERS
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.PATCH("/orders/:order_id/items", middlewares.RequireRoles("admin", "waiter"), orderCtrl.BulkUpdateItems)
	auth.POST("/orders/:order_id/status", middlewares.RequireRoles("admin", "waiter", "chef"), orderCtrl.AdvanceOrder)

	// Feed polling dapur
	auth.GET("/kitchen/items", middlewares.RequireRoles("admin", "chef"), orderCtrl.GetKitchenItems)

	// PAYMENTS
	auth.POST("/orders/:order_id/settle", middlewares.RequireRoles("admin", "waiter"), paymentCtrl.SettleCash)
	auth.GET("/orders/:order_id/payment-status", paymentCtrl.CheckStatus)

	// Websocket staff per role
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/staff", wsCtrl.StaffSocket)
	}

	return r
}
