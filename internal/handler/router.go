package handler

import (
	"loyalty/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter wires middleware and routes.
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	h := NewHandler(db, rdb, cfg)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login-or-register", h.LoginOrRegister)
		}

		users := api.Group("/users")
		{
			users.GET("/:id/points", h.GetUserPoints)
			users.GET("/:id/ledger", h.GetUserLedger)
			users.GET("/:id/coupons", h.ListUserCoupons)
		}

		stores := api.Group("/stores")
		{
			stores.POST("", h.CreateStore)
			stores.GET("", h.ListStores)
			stores.GET("/:id", h.GetStore)
		}

		transactions := api.Group("/transactions")
		{
			transactions.POST("", h.AddTransaction)
			transactions.GET("/:id", h.GetTransaction)
		}

		coupons := api.Group("/coupons")
		{
			coupons.GET("", h.ListCoupons)
			coupons.GET("/:id", h.GetCoupon)
			coupons.POST("/redeem", h.RedeemCoupon)
			coupons.POST("/redeem-by-serial", h.RedeemCouponBySerial)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
