package service

import (
	"context"
	"testing"

	"github.com/xiaot623/replyflow/internal/domain"
	"github.com/xiaot623/replyflow/tests/helpers"
)

func TestReportOutcomeSuccessMarksAnswered(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	m := helpers.NewTestMarketplace(t, db)

	review := seedReview(t, db, m.MarketplaceID, "ext-r1", 5)
	reply := seedScheduledReply(t, db, m.MarketplaceID, review.ReviewID, "")
	if ok, err := db.ClaimReply(ctx, reply.ReplyID); err != nil || !ok {
		t.Fatalf("failed to claim reply: ok=%v err=%v", ok, err)
	}

	resp, err := svc.ReportOutcome(ctx, reply.ReplyID, true, "")
	if err != nil {
		t.Fatalf("ReportOutcome failed: %v", err)
	}
	if !resp.Success || resp.AlreadyReported {
		t.Fatalf("unexpected response: %+v", resp)
	}

	got, err := db.GetReply(ctx, reply.ReplyID)
	if err != nil {
		t.Fatalf("GetReply failed: %v", err)
	}
	if got.Status != domain.ReplyStatusPublished {
		t.Fatalf("expected published, got %s", got.Status)
	}

	gotReview, err := db.GetReview(ctx, review.ReviewID)
	if err != nil {
		t.Fatalf("GetReview failed: %v", err)
	}
	if !gotReview.IsAnswered {
		t.Fatalf("expected review to be marked answered")
	}
}

func TestReportOutcomeDuplicateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	m := helpers.NewTestMarketplace(t, db)

	review := seedReview(t, db, m.MarketplaceID, "ext-r1", 5)
	reply := seedScheduledReply(t, db, m.MarketplaceID, review.ReviewID, "")
	if ok, err := db.ClaimReply(ctx, reply.ReplyID); err != nil || !ok {
		t.Fatalf("failed to claim reply: ok=%v err=%v", ok, err)
	}

	if _, err := svc.ReportOutcome(ctx, reply.ReplyID, true, ""); err != nil {
		t.Fatalf("ReportOutcome failed: %v", err)
	}

	// The same outcome delivered again acknowledges without changing state.
	resp, err := svc.ReportOutcome(ctx, reply.ReplyID, true, "")
	if err != nil {
		t.Fatalf("duplicate ReportOutcome failed: %v", err)
	}
	if !resp.Success || !resp.AlreadyReported {
		t.Fatalf("expected already-reported acknowledgement, got %+v", resp)
	}

	// A conflicting late failure report must not overwrite the publish.
	resp, err = svc.ReportOutcome(ctx, reply.ReplyID, false, "late failure")
	if err != nil {
		t.Fatalf("conflicting ReportOutcome failed: %v", err)
	}
	if !resp.AlreadyReported {
		t.Fatalf("expected conflicting report to be ignored, got %+v", resp)
	}

	got, err := db.GetReply(ctx, reply.ReplyID)
	if err != nil {
		t.Fatalf("GetReply failed: %v", err)
	}
	if got.Status != domain.ReplyStatusPublished {
		t.Fatalf("late failure must not overwrite published, got %s", got.Status)
	}
}

func TestReportOutcomeFailureKeepsItemUnanswered(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	m := helpers.NewTestMarketplace(t, db)

	question := seedQuestion(t, db, m.MarketplaceID, "ext-q1")
	reply := seedScheduledReply(t, db, m.MarketplaceID, "", question.QuestionID)
	if ok, err := db.ClaimReply(ctx, reply.ReplyID); err != nil || !ok {
		t.Fatalf("failed to claim reply: ok=%v err=%v", ok, err)
	}

	resp, err := svc.ReportOutcome(ctx, reply.ReplyID, false, "element not found")
	if err != nil {
		t.Fatalf("ReportOutcome failed: %v", err)
	}
	if !resp.Success || resp.AlreadyReported {
		t.Fatalf("unexpected response: %+v", resp)
	}

	got, err := db.GetReply(ctx, reply.ReplyID)
	if err != nil {
		t.Fatalf("GetReply failed: %v", err)
	}
	if got.Status != domain.ReplyStatusFailed || got.ErrorMessage != "element not found" {
		t.Fatalf("unexpected reply: %+v", got)
	}

	gotQuestion, err := db.GetQuestion(ctx, question.QuestionID)
	if err != nil {
		t.Fatalf("GetQuestion failed: %v", err)
	}
	if gotQuestion.IsAnswered {
		t.Fatalf("failed publish must not mark the question answered")
	}
}

func TestReportOutcomeUnknownReply(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.ReportOutcome(context.Background(), "nope", true, ""); err == nil {
		t.Fatalf("expected error for unknown reply")
	}
}
