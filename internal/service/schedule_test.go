package service

import (
	"context"
	"testing"

	"github.com/xiaot623/replyflow/internal/domain"
	"github.com/xiaot623/replyflow/tests/helpers"
)

func autoAllModes() domain.ModeSettings {
	return domain.ModeSettings{
		ReviewModes: map[int]string{
			1: "auto", 2: "auto", 3: "auto", 4: "auto", 5: "auto",
		},
		QuestionsMode: "auto",
	}
}

func TestApplyModesPromotesDrafts(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	m := helpers.NewTestMarketplace(t, db)

	review := seedReview(t, db, m.MarketplaceID, "ext-r1", 5)
	question := seedQuestion(t, db, m.MarketplaceID, "ext-q1")
	reviewDraft := seedDraftReply(t, db, m.MarketplaceID, review.ReviewID, "")
	questionDraft := seedDraftReply(t, db, m.MarketplaceID, "", question.QuestionID)

	resp, err := svc.ApplyModes(ctx, &domain.ApplyModesRequest{
		MarketplaceID: m.MarketplaceID,
		Settings:      autoAllModes(),
	})
	if err != nil {
		t.Fatalf("ApplyModes failed: %v", err)
	}
	if resp.Scheduled != 2 || resp.Demoted != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	for _, id := range []string{reviewDraft.ReplyID, questionDraft.ReplyID} {
		got, err := db.GetReply(ctx, id)
		if err != nil {
			t.Fatalf("GetReply failed: %v", err)
		}
		if got.Status != domain.ReplyStatusScheduled || got.Mode != domain.ReplyModeAuto {
			t.Fatalf("expected auto-scheduled, got %+v", got)
		}
	}
}

func TestApplyModesNeverAutoSchedulesOneStarReviews(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	m := helpers.NewTestMarketplace(t, db)

	review := seedReview(t, db, m.MarketplaceID, "ext-r1", 1)
	draft := seedDraftReply(t, db, m.MarketplaceID, review.ReviewID, "")

	resp, err := svc.ApplyModes(ctx, &domain.ApplyModesRequest{
		MarketplaceID: m.MarketplaceID,
		Settings:      autoAllModes(),
	})
	if err != nil {
		t.Fatalf("ApplyModes failed: %v", err)
	}
	if resp.Scheduled != 0 {
		t.Fatalf("1-star review must not auto-schedule, got %+v", resp)
	}

	got, err := db.GetReply(ctx, draft.ReplyID)
	if err != nil {
		t.Fatalf("GetReply failed: %v", err)
	}
	if got.Status != domain.ReplyStatusDrafted {
		t.Fatalf("expected draft to stay drafted, got %s", got.Status)
	}
}

func TestApplyModesDemotesWhenModeTurnsManual(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	m := helpers.NewTestMarketplace(t, db)

	review := seedReview(t, db, m.MarketplaceID, "ext-r1", 5)
	scheduled := seedScheduledReply(t, db, m.MarketplaceID, review.ReviewID, "")

	settings := autoAllModes()
	settings.ReviewModes[5] = "manual"

	resp, err := svc.ApplyModes(ctx, &domain.ApplyModesRequest{
		MarketplaceID: m.MarketplaceID,
		Settings:      settings,
	})
	if err != nil {
		t.Fatalf("ApplyModes failed: %v", err)
	}
	if resp.Demoted != 1 {
		t.Fatalf("expected 1 demotion, got %+v", resp)
	}

	got, err := db.GetReply(ctx, scheduled.ReplyID)
	if err != nil {
		t.Fatalf("GetReply failed: %v", err)
	}
	if got.Status != domain.ReplyStatusDrafted || got.Mode != domain.ReplyModeManual {
		t.Fatalf("expected demoted to drafted, got %+v", got)
	}
}

func TestApplyModesLeavesPublishingAlone(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	m := helpers.NewTestMarketplace(t, db)

	review := seedReview(t, db, m.MarketplaceID, "ext-r1", 5)
	claimed := seedScheduledReply(t, db, m.MarketplaceID, review.ReviewID, "")
	if ok, err := db.ClaimReply(ctx, claimed.ReplyID); err != nil || !ok {
		t.Fatalf("failed to claim reply: ok=%v err=%v", ok, err)
	}

	settings := autoAllModes()
	settings.ReviewModes[5] = "manual"

	resp, err := svc.ApplyModes(ctx, &domain.ApplyModesRequest{
		MarketplaceID: m.MarketplaceID,
		Settings:      settings,
	})
	if err != nil {
		t.Fatalf("ApplyModes failed: %v", err)
	}
	if resp.Demoted != 0 {
		t.Fatalf("publishing reply must not be demoted, got %+v", resp)
	}

	got, err := db.GetReply(ctx, claimed.ReplyID)
	if err != nil {
		t.Fatalf("GetReply failed: %v", err)
	}
	if got.Status != domain.ReplyStatusPublishing {
		t.Fatalf("expected publishing, got %s", got.Status)
	}
}

func TestScheduleReplyManualApproval(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	m := helpers.NewTestMarketplace(t, db)

	// Manual approval bypasses the policy even for a 1-star review.
	review := seedReview(t, db, m.MarketplaceID, "ext-r1", 1)
	draft := seedDraftReply(t, db, m.MarketplaceID, review.ReviewID, "")

	if err := svc.ScheduleReply(ctx, draft.ReplyID); err != nil {
		t.Fatalf("ScheduleReply failed: %v", err)
	}

	got, err := db.GetReply(ctx, draft.ReplyID)
	if err != nil {
		t.Fatalf("GetReply failed: %v", err)
	}
	if got.Status != domain.ReplyStatusScheduled || got.Mode != domain.ReplyModeManual {
		t.Fatalf("expected manually scheduled, got %+v", got)
	}

	// Scheduling a non-draft errors.
	if err := svc.ScheduleReply(ctx, draft.ReplyID); err == nil {
		t.Fatalf("expected error scheduling a non-draft")
	}
}
