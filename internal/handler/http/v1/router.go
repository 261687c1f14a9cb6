package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует маршрут входящих SMS и маршруты API v1
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	// Вебхук входящих SMS. Вне /v1 и без API-ключа: его вызывает SMS-провайдер.
	router.POST("/post-sms", h.processSMS)

	v1 := router.Group("/v1")
	if len(h.cfg.APIKeys) > 0 {
		v1.Use(APIKeyAuthMiddleware(h.cfg, h.logger))
	}

	// Маршруты для управления инцидентами (CRUD)
	v1.GET("/incidents", h.listIncidents)
	v1.GET("/incidents/:id", h.getIncident)
	v1.DELETE("/incidents/:id", h.deleteIncident)
	v1.PUT("/update-status", h.updateStatus)
	v1.POST("/create_incident", h.createIncident)

	// Маршрут Health-check
	v1.GET("/system/health", h.healthCheck)
}
