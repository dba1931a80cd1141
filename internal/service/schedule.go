package service

import (
	"context"
	"fmt"
	"log"

	"github.com/xiaot623/replyflow/internal/domain"
	"github.com/xiaot623/replyflow/policy"
)

// ApplyModes re-evaluates drafted and scheduled replies against the seller's
// per-rating mode settings through the policy engine. Decision schedule
// promotes drafts, hold demotes scheduled replies back to drafted, block
// leaves drafts untouched.
func (s *Service) ApplyModes(ctx context.Context, req *domain.ApplyModesRequest) (*domain.ApplyModesResponse, error) {
	marketplace, err := s.store.GetMarketplace(ctx, req.MarketplaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get marketplace: %w", err)
	}
	if marketplace == nil {
		return nil, ErrMarketplaceNotFound
	}

	resp := &domain.ApplyModesResponse{}

	drafted, err := s.store.ListRepliesByStatus(ctx, req.MarketplaceID, domain.ReplyStatusDrafted)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafted replies: %w", err)
	}
	for _, reply := range drafted {
		decision, err := s.decideFor(ctx, &reply, req.Settings)
		if err != nil {
			log.Printf("WARN: apply-modes: policy failed for reply %s: %v", reply.ReplyID, err)
			continue
		}
		if decision != policy.DecisionSchedule {
			continue
		}
		promoted, err := s.store.ScheduleReply(ctx, reply.ReplyID, domain.ReplyModeAuto, s.now())
		if err != nil {
			return resp, fmt.Errorf("failed to schedule reply %s: %w", reply.ReplyID, err)
		}
		if promoted {
			resp.Scheduled++
		}
	}

	scheduled, err := s.store.ListRepliesByStatus(ctx, req.MarketplaceID, domain.ReplyStatusScheduled)
	if err != nil {
		return resp, fmt.Errorf("failed to list scheduled replies: %w", err)
	}
	for _, reply := range scheduled {
		decision, err := s.decideFor(ctx, &reply, req.Settings)
		if err != nil {
			log.Printf("WARN: apply-modes: policy failed for reply %s: %v", reply.ReplyID, err)
			continue
		}
		if decision == policy.DecisionSchedule {
			continue
		}
		demoted, err := s.store.DemoteReply(ctx, reply.ReplyID)
		if err != nil {
			return resp, fmt.Errorf("failed to demote reply %s: %w", reply.ReplyID, err)
		}
		if demoted {
			resp.Demoted++
		}
	}

	return resp, nil
}

// ScheduleReply promotes one drafted reply on explicit user approval,
// bypassing the auto-mode policy.
func (s *Service) ScheduleReply(ctx context.Context, replyID string) error {
	promoted, err := s.store.ScheduleReply(ctx, replyID, domain.ReplyModeManual, s.now())
	if err != nil {
		return fmt.Errorf("failed to schedule reply: %w", err)
	}
	if !promoted {
		return fmt.Errorf("reply %s is not a draft", replyID)
	}
	return nil
}

func (s *Service) decideFor(ctx context.Context, reply *domain.Reply, settings domain.ModeSettings) (string, error) {
	input := policy.Input{
		Kind: string(reply.TargetKind()),
		Tone: reply.Tone,
	}
	switch reply.TargetKind() {
	case domain.ItemKindQuestion:
		input.ModeSetting = settings.QuestionsMode
	default:
		review, err := s.store.GetReview(ctx, reply.ReviewID)
		if err != nil {
			return "", err
		}
		if review == nil {
			return "", fmt.Errorf("review %s not found", reply.ReviewID)
		}
		input.Rating = review.Rating
		input.ModeSetting = settings.ReviewModes[review.Rating]
	}
	return s.policyEngine.Evaluate(ctx, input)
}
