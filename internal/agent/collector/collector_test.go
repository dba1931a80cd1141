package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/xiaot623/replyflow/internal/domain"
)

// scriptedClient plays back prepared pages.
type scriptedClient struct {
	reviewPages   []*ReviewPage
	questionPages []*QuestionPage
	reviewCalls   int
	questionCalls int
	err           error
}

func (c *scriptedClient) FetchReviewPage(ctx context.Context, sellerID string, cursor json.RawMessage) (*ReviewPage, error) {
	if c.err != nil {
		return nil, c.err
	}
	idx := c.reviewCalls
	c.reviewCalls++
	if idx >= len(c.reviewPages) {
		return &ReviewPage{}, nil
	}
	return c.reviewPages[idx], nil
}

func (c *scriptedClient) FetchQuestionPage(ctx context.Context, sellerID, paginationLastID string) (*QuestionPage, error) {
	if c.err != nil {
		return nil, c.err
	}
	idx := c.questionCalls
	c.questionCalls++
	if idx >= len(c.questionPages) {
		return &QuestionPage{}, nil
	}
	return c.questionPages[idx], nil
}

func newTestCollector(client ListingClient) *Collector {
	c := New(client)
	c.pageDelay = 0
	return c
}

func rawReview(uuid string, publishedAt time.Time) RawReview {
	return RawReview{
		UUID:        uuid,
		Text:        "text " + uuid,
		Rating:      4,
		PublishedAt: publishedAt.Format(time.RFC3339),
		Product:     RawProduct{URL: "https://www.ozon.ru/product/42/", Title: "Widget"},
	}
}

func TestCollectReviewsWalksPages(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	client := &scriptedClient{
		reviewPages: []*ReviewPage{
			{
				Items:  []RawReview{rawReview("r1", now), rawReview("r2", now.Add(-time.Minute))},
				Cursor: json.RawMessage(`{"uuid":"r2"}`),
			},
			{
				Items:  []RawReview{rawReview("r3", now.Add(-2*time.Minute))},
				Cursor: json.RawMessage(`{"uuid":"r3"}`),
			},
		},
	}
	c := newTestCollector(client)

	reviews, newest, err := c.CollectReviews(context.Background(), "seller", domain.ScanModeFull, time.Time{})
	if err != nil {
		t.Fatalf("CollectReviews failed: %v", err)
	}
	if len(reviews) != 3 {
		t.Fatalf("expected 3 reviews, got %d", len(reviews))
	}
	if !newest.Equal(now) {
		t.Fatalf("expected newest %v, got %v", now, newest)
	}
	if reviews[0].ExternalID != "r1" || reviews[0].ProductExternalID != "42" {
		t.Fatalf("unexpected mapping: %+v", reviews[0])
	}
	// Ends on the empty third page.
	if client.reviewCalls != 3 {
		t.Fatalf("expected 3 page fetches, got %d", client.reviewCalls)
	}
}

func TestCollectReviewsStopsOnRepeatedCursor(t *testing.T) {
	now := time.Now().UTC()
	stuck := json.RawMessage(`{"uuid":"same"}`)
	pages := make([]*ReviewPage, 0, 5)
	for i := 0; i < 5; i++ {
		pages = append(pages, &ReviewPage{
			Items:  []RawReview{rawReview(fmt.Sprintf("r%d", i), now.Add(-time.Duration(i)*time.Minute))},
			Cursor: stuck,
		})
	}
	client := &scriptedClient{reviewPages: pages}
	c := newTestCollector(client)

	_, _, err := c.CollectReviews(context.Background(), "seller", domain.ScanModeFull, time.Time{})
	if err != nil {
		t.Fatalf("CollectReviews failed: %v", err)
	}
	// Page 1 sets the cursor, page 2 returns it unchanged, walk ends there.
	if client.reviewCalls != 2 {
		t.Fatalf("expected walk to stop after the non-advancing cursor, got %d fetches", client.reviewCalls)
	}
}

func TestCollectReviewsStopsOnHasNextFalse(t *testing.T) {
	now := time.Now().UTC()
	hasNext := false
	client := &scriptedClient{
		reviewPages: []*ReviewPage{
			{
				Items:   []RawReview{rawReview("r1", now)},
				Cursor:  json.RawMessage(`{"uuid":"r1"}`),
				HasNext: &hasNext,
			},
			{
				Items:  []RawReview{rawReview("r2", now.Add(-time.Minute))},
				Cursor: json.RawMessage(`{"uuid":"r2"}`),
			},
		},
	}
	c := newTestCollector(client)

	reviews, _, err := c.CollectReviews(context.Background(), "seller", domain.ScanModeFull, time.Time{})
	if err != nil {
		t.Fatalf("CollectReviews failed: %v", err)
	}
	if len(reviews) != 1 || client.reviewCalls != 1 {
		t.Fatalf("expected walk to honor hasNext=false, got %d reviews in %d fetches", len(reviews), client.reviewCalls)
	}
}

func TestCollectReviewsLiveModeStopsAtWatermark(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	watermark := now.Add(-90 * time.Second)
	client := &scriptedClient{
		reviewPages: []*ReviewPage{
			{
				// One new item, one already seen.
				Items:  []RawReview{rawReview("r1", now), rawReview("r2", now.Add(-2*time.Minute))},
				Cursor: json.RawMessage(`{"uuid":"r2"}`),
			},
			{
				// Entirely below the watermark: the walk must stop here.
				Items:  []RawReview{rawReview("r3", now.Add(-3*time.Minute))},
				Cursor: json.RawMessage(`{"uuid":"r3"}`),
			},
			{
				Items:  []RawReview{rawReview("r4", now.Add(-4*time.Minute))},
				Cursor: json.RawMessage(`{"uuid":"r4"}`),
			},
		},
	}
	c := newTestCollector(client)

	reviews, newest, err := c.CollectReviews(context.Background(), "seller", domain.ScanModeLive, watermark)
	if err != nil {
		t.Fatalf("CollectReviews failed: %v", err)
	}
	if len(reviews) != 1 || reviews[0].ExternalID != "r1" {
		t.Fatalf("expected only the new review, got %+v", reviews)
	}
	if !newest.Equal(now) {
		t.Fatalf("expected newest %v, got %v", now, newest)
	}
	if client.reviewCalls != 2 {
		t.Fatalf("expected walk to stop at the first all-old page, got %d fetches", client.reviewCalls)
	}
}

func TestCollectReviewsPropagatesSessionErrors(t *testing.T) {
	client := &scriptedClient{err: ErrAuthRequired}
	c := newTestCollector(client)

	_, _, err := c.CollectReviews(context.Background(), "seller", domain.ScanModeLive, time.Time{})
	if err != ErrAuthRequired {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestCollectQuestionsStopsOnTerminalPaginationID(t *testing.T) {
	now := time.Now().UTC()
	client := &scriptedClient{
		questionPages: []*QuestionPage{
			{
				Items: []RawQuestion{
					{ID: 1, Text: "q1", PublishedAt: now.Format(time.RFC3339), Product: RawProduct{SKU: 7}},
				},
				PaginationLastID: "17",
			},
			{
				Items: []RawQuestion{
					{ID: 2, Text: "q2", PublishedAt: now.Add(-time.Minute).Format(time.RFC3339), AnswersTotalCount: 1, Product: RawProduct{SKU: 7}},
				},
				// "0" is the API's end-of-list marker.
				PaginationLastID: "0",
			},
			{
				Items:            []RawQuestion{{ID: 3, Text: "q3", PublishedAt: now.Format(time.RFC3339), Product: RawProduct{SKU: 7}}},
				PaginationLastID: "99",
			},
		},
	}
	c := newTestCollector(client)

	questions, _, err := c.CollectQuestions(context.Background(), "seller", domain.ScanModeFull, time.Time{})
	if err != nil {
		t.Fatalf("CollectQuestions failed: %v", err)
	}
	if len(questions) != 2 || client.questionCalls != 2 {
		t.Fatalf("expected walk to end at pagination id 0, got %d questions in %d fetches", len(questions), client.questionCalls)
	}
	if questions[0].ExternalID != "1" || questions[0].ProductExternalID != "7" {
		t.Fatalf("unexpected mapping: %+v", questions[0])
	}
	if questions[0].IsAnswered || !questions[1].IsAnswered {
		t.Fatalf("unexpected answered flags: %+v", questions)
	}
}
