package collector

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/xiaot623/replyflow/internal/domain"
)

const (
	liveWindow       = 500
	fullWindow       = 3000
	maxPages         = 10000
	defaultPageDelay = 400 * time.Millisecond
)

// Collector paginates the marketplace listing API and produces normalized
// items. The listing boundary is untrusted: every termination guard here
// exists because the API has shipped non-advancing cursors before.
type Collector struct {
	client    ListingClient
	pageDelay time.Duration
	pageLimit int
}

// New creates a collector over the given listing client.
func New(client ListingClient) *Collector {
	return &Collector{
		client:    client,
		pageDelay: defaultPageDelay,
		pageLimit: maxPages,
	}
}

// CollectReviews walks review listing pages. In live mode only items newer
// than the watermark are kept and the walk stops at the first page that
// contributes none; in full mode it backfills up to the full window.
// Returns the collected items and the newest created_at observed among them.
func (c *Collector) CollectReviews(ctx context.Context, sellerID string, mode domain.ScanMode, watermark time.Time) ([]domain.ScannedReview, time.Time, error) {
	maxItems := liveWindow
	if mode == domain.ScanModeFull {
		maxItems = fullWindow
	}
	live := mode != domain.ScanModeFull

	var reviews []domain.ScannedReview
	var newest time.Time
	var cursor, prevCursor []byte

	for page := 0; len(reviews) < maxItems && page < c.pageLimit; page++ {
		result, err := c.client.FetchReviewPage(ctx, sellerID, cursor)
		if err != nil {
			if errors.Is(err, ErrAuthRequired) || errors.Is(err, ErrCaptchaDetected) {
				return nil, newest, err
			}
			log.Printf("WARN: collector: review page %d failed: %v", page+1, err)
			break
		}

		if len(result.Items) == 0 {
			break
		}
		if len(result.Cursor) == 0 {
			break
		}
		// A cursor identical to the previous page's means the backend would
		// hand us the same page forever.
		if prevCursor != nil && bytes.Equal(result.Cursor, prevCursor) {
			break
		}

		pageNew := 0
		for _, item := range result.Items {
			mapped, createdAt := mapReview(item)
			if live && !createdAt.After(watermark) {
				continue
			}
			reviews = append(reviews, mapped)
			pageNew++
			if createdAt.After(newest) {
				newest = createdAt
			}
			if len(reviews) >= maxItems {
				break
			}
		}

		if live && pageNew == 0 {
			break
		}

		prevCursor = result.Cursor
		cursor = result.Cursor

		if result.HasNext != nil && !*result.HasNext {
			break
		}

		if err := sleepCtx(ctx, c.pageDelay); err != nil {
			return reviews, newest, err
		}
	}

	return reviews, newest, nil
}

// CollectQuestions walks question listing pages with the same guards as
// CollectReviews. The question listing uses a string pagination id where
// "0" marks the end of the list.
func (c *Collector) CollectQuestions(ctx context.Context, sellerID string, mode domain.ScanMode, watermark time.Time) ([]domain.ScannedQuestion, time.Time, error) {
	maxItems := liveWindow
	if mode == domain.ScanModeFull {
		maxItems = fullWindow
	}
	live := mode != domain.ScanModeFull

	var questions []domain.ScannedQuestion
	var newest time.Time
	paginationID := "0"
	prevPaginationID := ""

	for page := 0; len(questions) < maxItems && page < c.pageLimit; page++ {
		result, err := c.client.FetchQuestionPage(ctx, sellerID, paginationID)
		if err != nil {
			if errors.Is(err, ErrAuthRequired) || errors.Is(err, ErrCaptchaDetected) {
				return nil, newest, err
			}
			log.Printf("WARN: collector: question page %d failed: %v", page+1, err)
			break
		}

		if len(result.Items) == 0 {
			break
		}
		if result.PaginationLastID == "" {
			break
		}
		if result.PaginationLastID == prevPaginationID {
			break
		}

		pageNew := 0
		for _, item := range result.Items {
			mapped, createdAt := mapQuestion(item)
			if live && !createdAt.After(watermark) {
				continue
			}
			questions = append(questions, mapped)
			pageNew++
			if createdAt.After(newest) {
				newest = createdAt
			}
			if len(questions) >= maxItems {
				break
			}
		}

		if live && pageNew == 0 {
			break
		}

		prevPaginationID = result.PaginationLastID
		paginationID = result.PaginationLastID

		if result.PaginationLastID == "0" {
			break
		}

		if err := sleepCtx(ctx, c.pageDelay); err != nil {
			return questions, newest, err
		}
	}

	return questions, newest, nil
}

func mapReview(item RawReview) (domain.ScannedReview, time.Time) {
	createdAt := parseAPITime(item.PublishedAt)
	return domain.ScannedReview{
		ExternalID:        item.UUID,
		ProductExternalID: ResolveProductID(item.Product),
		ProductOfferID:    item.Product.OfferID,
		ProductName:       item.Product.Title,
		Text:              item.Text,
		Rating:            item.Rating,
		IsAnswered:        item.InteractionStatus == "PROCESSED",
		CreatedAt:         item.PublishedAt,
	}, createdAt
}

func mapQuestion(item RawQuestion) (domain.ScannedQuestion, time.Time) {
	createdAt := parseAPITime(item.PublishedAt)
	return domain.ScannedQuestion{
		ExternalID:        strconv.FormatInt(item.ID, 10),
		ProductExternalID: ResolveProductID(item.Product),
		ProductOfferID:    item.Product.OfferID,
		ProductName:       item.Product.Title,
		AuthorName:        item.Author.Name,
		Text:              item.Text,
		IsAnswered:        item.AnswersTotalCount > 0 || item.Status == "PROCESSED",
		CreatedAt:         item.PublishedAt,
	}, createdAt
}

func parseAPITime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
