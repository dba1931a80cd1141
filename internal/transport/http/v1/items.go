package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/replyflow/internal/domain"
	"github.com/xiaot623/replyflow/internal/service"
)

// SyncItems ingests one scan upload from an automation agent.
// POST /v1/items/sync
func (h *Handler) SyncItems(c echo.Context) error {
	var req domain.SyncRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.MarketplaceID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "marketplace_id is required"})
	}

	ctx := c.Request().Context()

	resp, err := h.service.SyncItems(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrMarketplaceNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}
