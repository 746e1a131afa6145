// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/beathaus/beathaus-backend/internal/config"
	"github.com/beathaus/beathaus-backend/internal/handlers"
	"github.com/beathaus/beathaus-backend/internal/middleware"
	"github.com/beathaus/beathaus-backend/internal/services"
	"github.com/beathaus/beathaus-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	limits := middleware.NewLimits(cfg.RateLimit)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.Frontend.BaseURL))
	router.Use(limits.General())

	// Shared collaborators
	tokens := utils.NewTokenManager(cfg.JWT.SecretKey)

	storage, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	// Services
	currency := services.NewCurrencyService(cfg.Currency)
	paystack := services.NewPaystackClient(cfg.Paystack)
	contracts := services.NewContractService(storage)

	authService := services.NewAuthService(db, tokens, cfg.JWT)
	pricing := services.NewPricingService(db, currency)
	checkout := services.NewCheckoutService(db, pricing, paystack)
	fulfillment := services.NewFulfillmentService(db, paystack, contracts)
	access := services.NewAccessService(db)
	beats := services.NewBeatService(db, storage)
	packs := services.NewSoundPackService(db, storage)
	discounts := services.NewDiscountService(db, pricing)
	wishlist := services.NewWishlistService(db, pricing)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	beatHandler := handlers.NewBeatHandler(beats, access, authService)
	packHandler := handlers.NewSoundPackHandler(packs, access, authService)
	discountHandler := handlers.NewDiscountHandler(discounts)
	purchaseHandler := handlers.NewPurchaseHandler(db, checkout, fulfillment, authService)
	wishlistHandler := handlers.NewWishlistHandler(wishlist)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Static file serving (for development)
	if cfg.Environment != "production" {
		router.Static("/uploads", "./uploads")
	}

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(limits.Auth())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", middleware.AuthRequired(tokens), authHandler.Me)
		}

		beatsGroup := v1.Group("/beats")
		{
			beatsGroup.GET("", beatHandler.List)
			beatsGroup.GET("/:id", beatHandler.Get)
			beatsGroup.GET("/:id/file-options", beatHandler.FileOptions)
			beatsGroup.GET("/:id/files/:file_type", middleware.AuthRequired(tokens), beatHandler.DownloadFile)

			beatsGroup.POST("", middleware.AuthRequired(tokens), middleware.ProducerRequired(), limits.Upload(), beatHandler.Create)
			beatsGroup.PUT("/:id", middleware.AuthRequired(tokens), middleware.ProducerRequired(), beatHandler.Update)
			beatsGroup.DELETE("/:id", middleware.AuthRequired(tokens), middleware.ProducerRequired(), beatHandler.Delete)
		}

		packsGroup := v1.Group("/soundpacks")
		{
			packsGroup.GET("", packHandler.List)
			packsGroup.GET("/:id", packHandler.Get)
			packsGroup.GET("/:id/file", middleware.AuthRequired(tokens), packHandler.DownloadFile)

			packsGroup.POST("", middleware.AuthRequired(tokens), middleware.ProducerRequired(), limits.Upload(), packHandler.Create)
			packsGroup.PUT("/:id", middleware.AuthRequired(tokens), middleware.ProducerRequired(), packHandler.Update)
			packsGroup.DELETE("/:id", middleware.AuthRequired(tokens), middleware.ProducerRequired(), packHandler.Delete)
		}

		discountsGroup := v1.Group("/discounts")
		{
			discountsGroup.GET("/active", discountHandler.ListActive)
			discountsGroup.POST("/validate", middleware.AuthRequired(tokens), discountHandler.Validate)
			discountsGroup.POST("", middleware.AuthRequired(tokens), middleware.ProducerRequired(), discountHandler.Create)
		}

		purchases := v1.Group("/purchases")
		purchases.Use(middleware.AuthRequired(tokens))
		{
			purchases.POST("", purchaseHandler.Checkout)
			purchases.GET("/history", purchaseHandler.History)
		}

		// Gateway callback: no auth, authenticated by HMAC signature. Its own
		// limiter bucket keeps catalog traffic from starving redeliveries.
		v1.POST("/webhooks/paystack", limits.Webhook(), purchaseHandler.Webhook)

		wishlistGroup := v1.Group("/wishlist")
		wishlistGroup.Use(middleware.AuthRequired(tokens))
		{
			wishlistGroup.GET("", wishlistHandler.List)
			wishlistGroup.POST("", wishlistHandler.Add)
			wishlistGroup.DELETE("/:id", wishlistHandler.Remove)
		}
	}

	return router, nil
}
