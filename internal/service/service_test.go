package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xiaot623/replyflow/internal/config"
	"github.com/xiaot623/replyflow/internal/domain"
	store "github.com/xiaot623/replyflow/internal/repository"
	"github.com/xiaot623/replyflow/policy"
	"github.com/xiaot623/replyflow/tests/helpers"
)

// cannedGenerator returns fixed draft text.
type cannedGenerator struct {
	err error
}

func (g *cannedGenerator) Draft(ctx context.Context, kind, productName, authorName, text string, rating int) (string, string, error) {
	if g.err != nil {
		return "", "", g.err
	}
	return fmt.Sprintf("canned %s reply for %s", kind, productName), "friendly", nil
}

func newTestService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()
	db := helpers.NewTestSQLiteStore(t)

	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	cfg := &config.Config{
		ClaimLimit:    10,
		ClaimOverscan: 20,
		StaleWindow:   5 * time.Minute,
	}
	return New(db, cfg, policyEngine, &cannedGenerator{}), db
}

func seedReview(t *testing.T, db *store.SQLiteStore, marketplaceID, externalID string, rating int) *domain.Review {
	t.Helper()
	review := &domain.Review{
		ReviewID:          uuid.NewString(),
		MarketplaceID:     marketplaceID,
		ExternalID:        externalID,
		ProductExternalID: "prod-1",
		ProductName:       "Widget",
		AuthorName:        "Anna",
		Text:              "text for " + externalID,
		Rating:            rating,
		CreatedAt:         time.Now(),
	}
	inserted, err := db.UpsertReview(context.Background(), review, "fp-"+externalID)
	if err != nil || !inserted {
		t.Fatalf("failed to seed review %s: inserted=%v err=%v", externalID, inserted, err)
	}
	return review
}

func seedQuestion(t *testing.T, db *store.SQLiteStore, marketplaceID, externalID string) *domain.Question {
	t.Helper()
	question := &domain.Question{
		QuestionID:        uuid.NewString(),
		MarketplaceID:     marketplaceID,
		ExternalID:        externalID,
		ProductExternalID: "prod-1",
		ProductName:       "Widget",
		Text:              "question for " + externalID,
		CreatedAt:         time.Now(),
	}
	inserted, err := db.UpsertQuestion(context.Background(), question, "fp-"+externalID)
	if err != nil || !inserted {
		t.Fatalf("failed to seed question %s: inserted=%v err=%v", externalID, inserted, err)
	}
	return question
}

func seedScheduledReply(t *testing.T, db *store.SQLiteStore, marketplaceID, reviewID, questionID string) *domain.Reply {
	t.Helper()
	reply := seedDraftReply(t, db, marketplaceID, reviewID, questionID)
	ok, err := db.ScheduleReply(context.Background(), reply.ReplyID, domain.ReplyModeAuto, time.Now())
	if err != nil || !ok {
		t.Fatalf("failed to schedule reply: ok=%v err=%v", ok, err)
	}
	reply.Status = domain.ReplyStatusScheduled
	return reply
}

func seedDraftReply(t *testing.T, db *store.SQLiteStore, marketplaceID, reviewID, questionID string) *domain.Reply {
	t.Helper()
	reply := &domain.Reply{
		ReplyID:       uuid.NewString(),
		MarketplaceID: marketplaceID,
		ReviewID:      reviewID,
		QuestionID:    questionID,
		Content:       "draft content",
		Tone:          "friendly",
		Mode:          domain.ReplyModeManual,
		Status:        domain.ReplyStatusDrafted,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := db.CreateReply(context.Background(), reply); err != nil {
		t.Fatalf("failed to create reply: %v", err)
	}
	return reply
}
