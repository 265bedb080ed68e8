package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the dashboard endpoints onto a gin engine.
func NewRouter(log *slog.Logger, handler *Handler, corsOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(Recovery(log))
	router.Use(CORS(corsOrigins))

	router.GET("/health", handler.Health)
	router.GET("/items", handler.Items)
	router.GET("/history/:id", handler.History)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
