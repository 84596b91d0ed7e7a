package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kalamitra/kalamitra-api/config"
	"github.com/kalamitra/kalamitra-api/controllers"
	"github.com/kalamitra/kalamitra-api/middleware"
	"github.com/kalamitra/kalamitra-api/models"
	"github.com/kalamitra/kalamitra-api/services"
)

// SetupRouter builds the HTTP router for the API
func SetupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(corsConfig(cfg)))

	tokens := services.NewTokenService(config.GetDB(), cfg)
	auth := middleware.EnsureValidToken(cfg, tokens)
	userOnly := middleware.RequireRole(models.RoleUser)
	artisanOnly := middleware.RequireRole(models.RoleArtisan)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		v1.POST("/auth/signup", controllers.SignupUser)
		v1.POST("/auth/artisans/signup", controllers.SignupArtisan)
		v1.POST("/auth/login", controllers.Login)
		v1.POST("/auth/logout", auth, controllers.Logout)

		v1.GET("/artisans", controllers.ListArtisans)
		v1.GET("/artisans/:id", controllers.GetArtisan)
		v1.PUT("/artisans/me", auth, artisanOnly, controllers.UpdateMyArtisanProfile)
		v1.POST("/artisans/me/image", auth, artisanOnly, controllers.UploadMyArtisanImage)
		v1.DELETE("/artisans/me", auth, artisanOnly, controllers.DeleteMyArtisanAccount)

		v1.GET("/users/me", auth, userOnly, controllers.GetMyProfile)
		v1.DELETE("/users/me", auth, userOnly, controllers.DeleteMyAccount)

		v1.POST("/products", auth, artisanOnly, controllers.CreateProduct)
		v1.GET("/products/:id", controllers.GetProduct)
		v1.POST("/products/:id/image", auth, artisanOnly, controllers.UploadProductImage)
		v1.DELETE("/products/:id", auth, artisanOnly, controllers.DeleteProduct)

		v1.POST("/artisans/:id/rating", auth, userOnly, controllers.RateArtisan)
		v1.GET("/artisans/:id/rating", auth, userOnly, controllers.GetMyRating)
		v1.DELETE("/artisans/:id/rating", auth, userOnly, controllers.DeleteRating)

		v1.GET("/wishlist", auth, userOnly, controllers.ListWishlist)
		v1.POST("/wishlist/:productId", auth, userOnly, controllers.AddToWishlist)
		v1.DELETE("/wishlist/:productId", auth, userOnly, controllers.RemoveFromWishlist)

		v1.GET("/chats", auth, controllers.ListChats)
		v1.POST("/artisans/:id/chat", auth, userOnly, controllers.StartChat)
		v1.GET("/chats/:id/messages", auth, controllers.ListMessages)
		v1.POST("/chats/:id/messages", auth, controllers.SendMessage)

		v1.GET("/uploads/:filename", controllers.GetUploadedImage)
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range cfg.CORSAllowedOrigins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	return corsCfg
}
