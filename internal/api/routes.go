package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/market/:zipCode", handler.GetMarketAnalysis)
		api.GET("/ingest/run", handler.RunIngest)
		api.GET("/health", handler.GetHealth)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
