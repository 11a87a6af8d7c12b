package api

import (
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", h.HealthCheckHandler)
		apiGroup.GET("/lists", h.ListsHandler)
		apiGroup.POST("/refresh", h.RefreshHandler)
		apiGroup.POST("/cards/:id/close", h.CloseCardHandler)
		apiGroup.GET("/boards/:id", h.BoardHandler)
		apiGroup.GET("/targets", h.ListTargetsHandler)
		apiGroup.POST("/targets", h.AddTargetHandler)
		apiGroup.PUT("/targets/:index", h.UpdateTargetHandler)
		apiGroup.DELETE("/targets/:index", h.DeleteTargetHandler)
	}
	return router
}
