// Package backend provides the agent's HTTP client for the coordination
// service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xiaot623/replyflow/internal/domain"
)

// ErrSuspended is returned when the backend refuses to hand out work because
// the marketplace kill-switch is active.
var ErrSuspended = errors.New("automation suspended by backend")

// Client is an HTTP client for the backend pipeline API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new backend client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ClaimBatch reserves a batch of scheduled replies for publication.
func (c *Client) ClaimBatch(ctx context.Context, marketplaceID string, limit int) ([]domain.PendingReply, error) {
	req := domain.ClaimRequest{MarketplaceID: marketplaceID, Limit: limit}
	var resp domain.ClaimResponse
	if err := c.post(ctx, "/v1/replies/claim", req, &resp); err != nil {
		return nil, err
	}
	return resp.Replies, nil
}

// ReportOutcome records one publish attempt result.
func (c *Client) ReportOutcome(ctx context.Context, replyID string, success bool, errorMessage string) (*domain.OutcomeResponse, error) {
	req := domain.OutcomeRequest{Success: success, ErrorMessage: errorMessage}
	var resp domain.OutcomeResponse
	if err := c.post(ctx, "/v1/replies/"+replyID+"/outcome", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("backend rejected outcome for reply %s", replyID)
	}
	return &resp, nil
}

// SyncItems uploads one scan result.
func (c *Client) SyncItems(ctx context.Context, req *domain.SyncRequest) (*domain.SyncResponse, error) {
	var resp domain.SyncResponse
	if err := c.post(ctx, "/v1/items/sync", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TripKillSwitch mirrors the agent's local kill-switch to the backend so
// other claimants stop too.
func (c *Client) TripKillSwitch(ctx context.Context, marketplaceID, reason string) error {
	body, err := json.Marshal(domain.KillSwitchRequest{Reason: reason})
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/v1/marketplaces/"+marketplaceID+"/kill-switch", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to trip kill-switch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("kill-switch request returned status %d: %s", resp.StatusCode, raw)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return ErrSuspended
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
