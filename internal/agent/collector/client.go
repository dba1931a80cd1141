// Package collector scrapes reviews and questions from the marketplace's
// paginated listing API inside an authenticated session.
package collector

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
)

// Distinguished session failures. Callers must not retry these; they trip
// the kill-switch instead.
var (
	ErrAuthRequired    = errors.New("marketplace session requires authentication")
	ErrCaptchaDetected = errors.New("marketplace presented a bot challenge")
)

// RawProduct is the product block as the listing API returns it. Which
// identifier is populated varies between responses.
type RawProduct struct {
	URL        string `json:"url"`
	OfferID    string `json:"offer_id"`
	SKU        int64  `json:"sku"`
	Title      string `json:"title"`
	CoverImage string `json:"cover_image"`
}

// RawReview is one review item on a listing page.
type RawReview struct {
	UUID              string     `json:"uuid"`
	Text              string     `json:"text"`
	Rating            int        `json:"rating"`
	PublishedAt       string     `json:"published_at"`
	PhotosCount       int        `json:"photos_count"`
	InteractionStatus string     `json:"interaction_status"`
	Product           RawProduct `json:"product"`
}

// RawQuestion is one question item on a listing page.
type RawQuestion struct {
	ID                int64  `json:"id"`
	Text              string `json:"text"`
	PublishedAt       string `json:"published_at"`
	Status            string `json:"status"`
	AnswersTotalCount int    `json:"answers_total_count"`
	Author            struct {
		Name string `json:"name"`
	} `json:"author"`
	Product RawProduct `json:"product"`
}

// ReviewPage is one page of the review listing. Cursor is opaque: the API
// returns an object and expects it echoed back verbatim.
type ReviewPage struct {
	Items   []RawReview
	Cursor  json.RawMessage
	HasNext *bool
}

// QuestionPage is one page of the question listing.
type QuestionPage struct {
	Items            []RawQuestion
	PaginationLastID string
}

// ListingClient fetches listing pages. The HTTP implementation talks to the
// live seller API; tests plug in mocks.
type ListingClient interface {
	FetchReviewPage(ctx context.Context, sellerID string, cursor json.RawMessage) (*ReviewPage, error)
	FetchQuestionPage(ctx context.Context, sellerID, paginationLastID string) (*QuestionPage, error)
}

// HTTPListingClient implements ListingClient against the seller API.
type HTTPListingClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPListingClient creates a listing client for the given seller API base.
func NewHTTPListingClient(baseURL string) *HTTPListingClient {
	return &HTTPListingClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type reviewListResponse struct {
	Result     []RawReview     `json:"result"`
	LastReview json.RawMessage `json:"last_review"`
	HasNext    *bool           `json:"hasNext"`
}

type questionListResponse struct {
	Result           []RawQuestion `json:"result"`
	PaginationLastID string        `json:"pagination_last_id"`
}

// FetchReviewPage fetches one review listing page.
func (c *HTTPListingClient) FetchReviewPage(ctx context.Context, sellerID string, cursor json.RawMessage) (*ReviewPage, error) {
	payload := map[string]interface{}{
		"company_id":   sellerID,
		"company_type": "seller",
		"filter": map[string]interface{}{
			"published_at":       map[string]interface{}{},
			"interaction_status": []string{"ALL"},
		},
	}
	if len(cursor) > 0 {
		payload["last_review"] = cursor
	}

	var resp reviewListResponse
	if err := c.post(ctx, "/v4/review/list", payload, &resp); err != nil {
		return nil, err
	}
	return &ReviewPage{Items: resp.Result, Cursor: resp.LastReview, HasNext: resp.HasNext}, nil
}

// FetchQuestionPage fetches one question listing page.
func (c *HTTPListingClient) FetchQuestionPage(ctx context.Context, sellerID, paginationLastID string) (*QuestionPage, error) {
	if paginationLastID == "" {
		paginationLastID = "0"
	}
	payload := map[string]interface{}{
		"sc_company_id":      sellerID,
		"company_type":       "seller",
		"filter":             map[string]string{"status": "ALL"},
		"pagination_last_id": paginationLastID,
		"with_brands":        false,
		"with_counters":      false,
	}

	var resp questionListResponse
	if err := c.post(ctx, "/v1/question-list", payload, &resp); err != nil {
		return nil, err
	}
	return &QuestionPage{Items: resp.Result, PaginationLastID: resp.PaginationLastID}, nil
}

func (c *HTTPListingClient) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal listing request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create listing request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("listing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrAuthRequired
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if bytes.Contains(bytes.ToLower(raw), []byte("captcha")) {
			return ErrCaptchaDetected
		}
		return fmt.Errorf("listing API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode listing response: %w", err)
	}
	return nil
}
