// Package v1 provides HTTP handlers for the backend API.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/replyflow/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Pipeline API (called by automation agents)
	e.POST("/v1/replies/claim", h.ClaimBatch)
	e.POST("/v1/replies/:reply_id/outcome", h.ReportOutcome)
	e.POST("/v1/items/sync", h.SyncItems)

	// Dashboard API
	e.POST("/v1/replies/:reply_id/schedule", h.ScheduleReply)
	e.DELETE("/v1/replies/:reply_id", h.DiscardDraft)
	e.POST("/v1/replies/apply-modes", h.ApplyModes)
	e.POST("/v1/replies/generate-drafts", h.GenerateDrafts)

	// Marketplace admin API
	e.POST("/v1/marketplaces", h.CreateMarketplace)
	e.GET("/v1/marketplaces/:marketplace_id", h.GetMarketplace)
	e.PUT("/v1/marketplaces/:marketplace_id/kill-switch", h.TripKillSwitch)
	e.DELETE("/v1/marketplaces/:marketplace_id/kill-switch", h.ResetKillSwitch)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
