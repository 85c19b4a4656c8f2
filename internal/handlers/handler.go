// Package handlers serves the local diagnostics API of the device while it
// is awake.
package handlers

import (
	"net/http"

	"sentinel_cam/internal/logger"
	"sentinel_cam/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	metrics  http.Handler
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler. metrics may be nil.
func NewHandler(services *service.Service, metrics http.Handler, log *logger.Logger) *Handler {
	return &Handler{services: services, metrics: metrics, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}

	h.registerAPIRoutes(router)

	// status stream, same port
	router.GET("/ws", append(h.guard(), h.wsConnect)...)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.guard()...)
	{
		api.GET("/device/state", h.getState)
		api.GET("/logs", h.getLogs)
	}
}

// guard returns the bearer check when a token secret is configured.
func (h *Handler) guard() []gin.HandlerFunc {
	if h.services.Authorization == nil {
		return nil
	}
	return []gin.HandlerFunc{h.bearerMiddleware}
}
