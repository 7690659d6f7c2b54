package routes

import (
	"time"

	"github.com/nezqt3/MiniAppShopTgBot/internal/handlers"
	"github.com/nezqt3/MiniAppShopTgBot/internal/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-openapi/runtime/middleware"
)

func InitRoutes(userHandler *handlers.UserHandler, purchaseHandler *handlers.PurchaseHandler) *gin.Engine {
	router := gin.Default()

	_ = router.SetTrustedProxies(nil)

	router.Use(middlewares.RequestID())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.StaticFile("/swagger.yaml", "./swagger.yaml")

	opts := middleware.SwaggerUIOpts{SpecURL: "/swagger.yaml"}
	sh := middleware.SwaggerUI(opts, nil)

	router.GET("/swagger/*any", func(c *gin.Context) {
		sh.ServeHTTP(c.Writer, c.Request)
	})

	api := router.Group("/api")

	api.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// идентичность приходит от вызывающего, отдельной аутентификации нет
	api.POST("/user", userHandler.Register)
	api.POST("/purchase", purchaseHandler.ApplyPurchase)
	api.GET("/balance/:id", userHandler.GetBalance)
	api.GET("/history/:id", userHandler.GetHistory)
	api.POST("/referralLink", userHandler.SetReferralLink)
	api.GET("/lastUsers", userHandler.GetLastUsers)

	return router
}
