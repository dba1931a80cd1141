package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/replyflow/internal/domain"
	"github.com/xiaot623/replyflow/internal/service"
)

// CreateMarketplace registers a seller account.
// POST /v1/marketplaces
func (h *Handler) CreateMarketplace(c echo.Context) error {
	var req domain.CreateMarketplaceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.SellerID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "seller_id is required"})
	}

	ctx := c.Request().Context()

	marketplace, err := h.service.CreateMarketplace(ctx, &req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, marketplace)
}

// GetMarketplace retrieves a marketplace.
// GET /v1/marketplaces/:marketplace_id
func (h *Handler) GetMarketplace(c echo.Context) error {
	marketplaceID := c.Param("marketplace_id")

	ctx := c.Request().Context()

	marketplace, err := h.service.GetMarketplace(ctx, marketplaceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if marketplace == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "marketplace not found"})
	}
	return c.JSON(http.StatusOK, marketplace)
}

// TripKillSwitch halts automation for a marketplace.
// PUT /v1/marketplaces/:marketplace_id/kill-switch
func (h *Handler) TripKillSwitch(c echo.Context) error {
	marketplaceID := c.Param("marketplace_id")

	var req domain.KillSwitchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()

	if err := h.service.TripKillSwitch(ctx, marketplaceID, req.Reason); err != nil {
		if errors.Is(err, service.ErrMarketplaceNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// ResetKillSwitch re-arms automation after a human re-authenticated.
// DELETE /v1/marketplaces/:marketplace_id/kill-switch
func (h *Handler) ResetKillSwitch(c echo.Context) error {
	marketplaceID := c.Param("marketplace_id")

	ctx := c.Request().Context()

	if err := h.service.ResetKillSwitch(ctx, marketplaceID); err != nil {
		if errors.Is(err, service.ErrMarketplaceNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
