// Package http is the delivery layer: a thin JSON surface mirroring the UI
// events. All state rules live in the wallet service; handlers only translate
// requests and publish user-facing notices.
package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"banner-earn-client/internal/common/middleware"
)

// NewRouter builds the gin engine with the gateway middleware stack.
func NewRouter(h *Handler, origin string, logger zerolog.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Recovery(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Login)
			auth.POST("/register", h.Register)
			auth.POST("/logout", h.Logout)
		}

		v1.GET("/session", h.Session)

		banners := v1.Group("/banners")
		{
			banners.GET("", h.ListBanners)
			banners.POST("/:id/click", h.ClickBanner)
			banners.POST("/refresh", h.RefreshBanners)
		}

		v1.POST("/withdrawals", h.Withdraw)
		v1.GET("/transactions", h.Transactions)

		v1.GET("/alerts", h.Alerts)
		v1.DELETE("/alerts/:id", h.DismissAlert)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "banner-earn-client",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
