package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/xiaot623/replyflow/internal/domain"
)

// ErrAutomationSuspended is returned by ClaimBatch while the marketplace
// kill-switch is active.
var ErrAutomationSuspended = errors.New(domain.ErrCodeAutomationSuspended)

// ErrMarketplaceNotFound is returned for an unknown marketplace id.
var ErrMarketplaceNotFound = errors.New("marketplace not found")

// ClaimBatch atomically reserves up to limit scheduled replies for one
// publishing attempt each. Every returned reply is durably in publishing
// status and will not be handed to a second caller before the staleness
// window elapses.
func (s *Service) ClaimBatch(ctx context.Context, marketplaceID string, limit int) ([]domain.PendingReply, error) {
	if limit <= 0 || limit > s.config.ClaimLimit {
		limit = s.config.ClaimLimit
	}

	marketplace, err := s.store.GetMarketplace(ctx, marketplaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get marketplace: %w", err)
	}
	if marketplace == nil {
		return nil, ErrMarketplaceNotFound
	}
	if marketplace.KillSwitchActive {
		return nil, ErrAutomationSuspended
	}

	// Recovery pass: a prior claimant that crashed or timed out leaves its
	// replies stuck in publishing. Return them to scheduled.
	recovered, err := s.store.RevertStaleClaims(ctx, marketplaceID, s.now().Add(-s.config.StaleWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to revert stale claims: %w", err)
	}
	if recovered > 0 {
		log.Printf("claim: recovered %d stale publishing replies for marketplace %s", recovered, marketplaceID)
	}

	// Items that already have an outcome in flight or completed must not be
	// awarded a second reply.
	activeReviews, activeQuestions, err := s.store.ListActiveTargets(ctx, marketplaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active targets: %w", err)
	}

	// Overscan so in-batch duplicates and dedup hits still leave a full batch.
	candidates, err := s.store.ListScheduledReplies(ctx, marketplaceID, s.config.ClaimOverscan)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled replies: %w", err)
	}

	seenTargets := make(map[string]bool)
	var survivors []domain.Reply
	for _, reply := range candidates {
		if activeReviews[reply.ReviewID] || activeQuestions[reply.QuestionID] {
			log.Printf("WARN: claim: skipping reply %s, target %s already has an outcome in flight", reply.ReplyID, reply.TargetID())
			continue
		}

		// Two schedulable replies for one item is an upstream bug. Keep the
		// first, fail the rest.
		targetKey := string(reply.TargetKind()) + "_" + reply.TargetID()
		if seenTargets[targetKey] {
			log.Printf("WARN: claim: duplicate reply %s for target %s in batch", reply.ReplyID, targetKey)
			if _, err := s.store.MarkReplyFailed(ctx, reply.ReplyID, domain.FailReasonDuplicateInBatch); err != nil {
				log.Printf("WARN: claim: failed to mark duplicate reply %s: %v", reply.ReplyID, err)
			}
			continue
		}
		seenTargets[targetKey] = true

		survivors = append(survivors, reply)
		if len(survivors) >= limit {
			break
		}
	}

	var batch []domain.PendingReply
	for _, reply := range survivors {
		// The conditional update is the mutual-exclusion boundary. A row a
		// concurrent caller already claimed matches zero rows; losing that
		// race is expected and silent.
		claimed, err := s.store.ClaimReply(ctx, reply.ReplyID)
		if err != nil {
			return batch, fmt.Errorf("failed to claim reply %s: %w", reply.ReplyID, err)
		}
		if !claimed {
			continue
		}

		externalID, err := s.resolveExternalID(ctx, &reply)
		if err != nil {
			return batch, err
		}
		if externalID == "" {
			if _, err := s.store.MarkReplyFailed(ctx, reply.ReplyID, domain.FailReasonExternalIDNotFound); err != nil {
				log.Printf("WARN: claim: failed to mark reply %s unresolvable: %v", reply.ReplyID, err)
			}
			continue
		}

		batch = append(batch, domain.PendingReply{
			ReplyID:    reply.ReplyID,
			Kind:       reply.TargetKind(),
			ExternalID: externalID,
			Text:       reply.Content,
		})
	}

	return batch, nil
}

// resolveExternalID maps a claimed reply to the marketplace-assigned id the
// agent needs to locate the item in the seller UI. Empty means unresolvable.
func (s *Service) resolveExternalID(ctx context.Context, reply *domain.Reply) (string, error) {
	switch reply.TargetKind() {
	case domain.ItemKindQuestion:
		question, err := s.store.GetQuestion(ctx, reply.QuestionID)
		if err != nil {
			return "", fmt.Errorf("failed to get question %s: %w", reply.QuestionID, err)
		}
		if question == nil {
			return "", nil
		}
		return question.ExternalID, nil
	default:
		review, err := s.store.GetReview(ctx, reply.ReviewID)
		if err != nil {
			return "", fmt.Errorf("failed to get review %s: %w", reply.ReviewID, err)
		}
		if review == nil {
			return "", nil
		}
		return review.ExternalID, nil
	}
}
