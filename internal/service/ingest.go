package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/xiaot623/replyflow/internal/domain"
)

// SyncItems applies one scan upload from an agent: upserts reviews and
// questions keyed by external id, skipping content-fingerprint duplicates.
func (s *Service) SyncItems(ctx context.Context, req *domain.SyncRequest) (*domain.SyncResponse, error) {
	marketplace, err := s.store.GetMarketplace(ctx, req.MarketplaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get marketplace: %w", err)
	}
	if marketplace == nil {
		return nil, ErrMarketplaceNotFound
	}

	resp := &domain.SyncResponse{}

	for _, scanned := range req.Reviews {
		review := &domain.Review{
			ReviewID:          uuid.NewString(),
			MarketplaceID:     req.MarketplaceID,
			ExternalID:        scanned.ExternalID,
			ProductExternalID: scanned.ProductExternalID,
			ProductOfferID:    scanned.ProductOfferID,
			ProductName:       scanned.ProductName,
			AuthorName:        scanned.AuthorName,
			Text:              scanned.Text,
			Rating:            scanned.Rating,
			IsAnswered:        scanned.IsAnswered,
			CreatedAt:         parseItemTime(scanned.CreatedAt, s.now()),
		}
		fingerprint := itemFingerprint(string(domain.ItemKindReview), scanned.AuthorName, scanned.Text, scanned.CreatedAt)
		inserted, err := s.store.UpsertReview(ctx, review, fingerprint)
		if err != nil {
			log.Printf("WARN: sync: failed to upsert review %s: %v", scanned.ExternalID, err)
			continue
		}
		if inserted {
			resp.ReviewsUpserted++
		} else {
			resp.Skipped++
		}
	}

	for _, scanned := range req.Questions {
		question := &domain.Question{
			QuestionID:        uuid.NewString(),
			MarketplaceID:     req.MarketplaceID,
			ExternalID:        scanned.ExternalID,
			ProductExternalID: scanned.ProductExternalID,
			ProductOfferID:    scanned.ProductOfferID,
			ProductName:       scanned.ProductName,
			AuthorName:        scanned.AuthorName,
			Text:              scanned.Text,
			IsAnswered:        scanned.IsAnswered,
			CreatedAt:         parseItemTime(scanned.CreatedAt, s.now()),
		}
		fingerprint := itemFingerprint(string(domain.ItemKindQuestion), scanned.AuthorName, scanned.Text, scanned.CreatedAt)
		inserted, err := s.store.UpsertQuestion(ctx, question, fingerprint)
		if err != nil {
			log.Printf("WARN: sync: failed to upsert question %s: %v", scanned.ExternalID, err)
			continue
		}
		if inserted {
			resp.QuestionsUpserted++
		} else {
			resp.Skipped++
		}
	}

	return resp, nil
}

func itemFingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func parseItemTime(value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return fallback
}
