package api

import (
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with logging and panic recovery
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/jurisdictions", h.ListJurisdictions)
		v1.GET("/jurisdictions/:code", h.GetJurisdiction)
		v1.POST("/calculate", h.Calculate)
		v1.POST("/compare", h.Compare)
		v1.POST("/gross-up", h.GrossUp)
	}

	return router
}
