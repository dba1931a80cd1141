package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/replyflow/internal/domain"
	"github.com/xiaot623/replyflow/internal/service"
)

// ClaimBatch reserves a batch of scheduled replies for one publish attempt.
// POST /v1/replies/claim
func (h *Handler) ClaimBatch(c echo.Context) error {
	var req domain.ClaimRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.MarketplaceID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "marketplace_id is required"})
	}

	ctx := c.Request().Context()

	replies, err := h.service.ClaimBatch(ctx, req.MarketplaceID, req.Limit)
	if err != nil {
		if errors.Is(err, service.ErrAutomationSuspended) {
			return c.JSON(http.StatusForbidden, map[string]interface{}{
				"error":   domain.ErrCodeAutomationSuspended,
				"replies": []domain.PendingReply{},
			})
		}
		if errors.Is(err, service.ErrMarketplaceNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if replies == nil {
		replies = []domain.PendingReply{}
	}
	return c.JSON(http.StatusOK, domain.ClaimResponse{Replies: replies})
}

// ReportOutcome records one publish attempt result. Idempotent by contract.
// POST /v1/replies/:reply_id/outcome
func (h *Handler) ReportOutcome(c echo.Context) error {
	replyID := c.Param("reply_id")

	var req domain.OutcomeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()

	resp, err := h.service.ReportOutcome(ctx, replyID, req.Success, req.ErrorMessage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}

// ScheduleReply promotes a draft on explicit user approval.
// POST /v1/replies/:reply_id/schedule
func (h *Handler) ScheduleReply(c echo.Context) error {
	replyID := c.Param("reply_id")

	ctx := c.Request().Context()

	if err := h.service.ScheduleReply(ctx, replyID); err != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// DiscardDraft deletes a drafted reply.
// DELETE /v1/replies/:reply_id
func (h *Handler) DiscardDraft(c echo.Context) error {
	replyID := c.Param("reply_id")

	ctx := c.Request().Context()

	if err := h.service.DiscardDraft(ctx, replyID); err != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// ApplyModes re-evaluates replies against the seller's auto-reply settings.
// POST /v1/replies/apply-modes
func (h *Handler) ApplyModes(c echo.Context) error {
	var req domain.ApplyModesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.MarketplaceID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "marketplace_id is required"})
	}

	ctx := c.Request().Context()

	resp, err := h.service.ApplyModes(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrMarketplaceNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}

// GenerateDrafts creates drafted replies for unanswered items.
// POST /v1/replies/generate-drafts
func (h *Handler) GenerateDrafts(c echo.Context) error {
	var req struct {
		MarketplaceID string `json:"marketplace_id"`
		Limit         int    `json:"limit,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.MarketplaceID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "marketplace_id is required"})
	}

	ctx := c.Request().Context()

	created, err := h.service.GenerateDrafts(ctx, req.MarketplaceID, req.Limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]int{"created": created})
}
