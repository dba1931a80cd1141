package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/xiaot623/replyflow/internal/domain"
)

// GenerateDrafts creates one drafted reply for every unanswered item that
// does not already have an active reply. Draft text comes from the opaque
// generator; failures there skip the item rather than abort the run.
func (s *Service) GenerateDrafts(ctx context.Context, marketplaceID string, limit int) (int, error) {
	if s.drafts == nil {
		return 0, fmt.Errorf("no draft generator configured")
	}

	created := 0

	reviews, err := s.store.ListUnansweredReviews(ctx, marketplaceID, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list unanswered reviews: %w", err)
	}
	for _, review := range reviews {
		active, err := s.store.HasActiveReplyForTarget(ctx, domain.ItemKindReview, review.ReviewID)
		if err != nil {
			return created, err
		}
		if active {
			continue
		}
		content, tone, err := s.drafts.Draft(ctx, string(domain.ItemKindReview), review.ProductName, review.AuthorName, review.Text, review.Rating)
		if err != nil {
			log.Printf("WARN: drafts: generation failed for review %s: %v", review.ReviewID, err)
			continue
		}
		if err := s.createDraft(ctx, marketplaceID, review.ReviewID, "", content, tone); err != nil {
			return created, err
		}
		created++
	}

	questions, err := s.store.ListUnansweredQuestions(ctx, marketplaceID, limit)
	if err != nil {
		return created, fmt.Errorf("failed to list unanswered questions: %w", err)
	}
	for _, question := range questions {
		active, err := s.store.HasActiveReplyForTarget(ctx, domain.ItemKindQuestion, question.QuestionID)
		if err != nil {
			return created, err
		}
		if active {
			continue
		}
		content, tone, err := s.drafts.Draft(ctx, string(domain.ItemKindQuestion), question.ProductName, question.AuthorName, question.Text, 0)
		if err != nil {
			log.Printf("WARN: drafts: generation failed for question %s: %v", question.QuestionID, err)
			continue
		}
		if err := s.createDraft(ctx, marketplaceID, "", question.QuestionID, content, tone); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

// CreateDraft creates a drafted reply for one item, enforcing the
// one-active-reply-per-item invariant.
func (s *Service) CreateDraft(ctx context.Context, marketplaceID string, kind domain.ItemKind, itemID, content, tone string) (*domain.Reply, error) {
	active, err := s.store.HasActiveReplyForTarget(ctx, kind, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active replies: %w", err)
	}
	if active {
		return nil, fmt.Errorf("item %s already has an active reply", itemID)
	}

	reviewID, questionID := itemID, ""
	if kind == domain.ItemKindQuestion {
		reviewID, questionID = "", itemID
	}
	reply := &domain.Reply{
		ReplyID:       uuid.NewString(),
		MarketplaceID: marketplaceID,
		ReviewID:      reviewID,
		QuestionID:    questionID,
		Content:       content,
		Tone:          tone,
		Mode:          domain.ReplyModeManual,
		Status:        domain.ReplyStatusDrafted,
		CreatedAt:     s.now(),
		UpdatedAt:     s.now(),
	}
	if err := s.store.CreateReply(ctx, reply); err != nil {
		return nil, fmt.Errorf("failed to create reply: %w", err)
	}
	return reply, nil
}

func (s *Service) createDraft(ctx context.Context, marketplaceID, reviewID, questionID, content, tone string) error {
	reply := &domain.Reply{
		ReplyID:       uuid.NewString(),
		MarketplaceID: marketplaceID,
		ReviewID:      reviewID,
		QuestionID:    questionID,
		Content:       content,
		Tone:          tone,
		Mode:          domain.ReplyModeManual,
		Status:        domain.ReplyStatusDrafted,
		CreatedAt:     s.now(),
		UpdatedAt:     s.now(),
	}
	if err := s.store.CreateReply(ctx, reply); err != nil {
		return fmt.Errorf("failed to create reply: %w", err)
	}
	return nil
}

// DiscardDraft deletes a drafted reply on explicit user request.
func (s *Service) DiscardDraft(ctx context.Context, replyID string) error {
	deleted, err := s.store.DiscardDraft(ctx, replyID)
	if err != nil {
		return fmt.Errorf("failed to discard draft: %w", err)
	}
	if !deleted {
		return fmt.Errorf("reply %s is not a draft", replyID)
	}
	return nil
}
