package service

import (
	"context"
	"fmt"
	"log"

	"github.com/xiaot623/replyflow/internal/domain"
)

// ReportOutcome records the result of one publish attempt. It is idempotent:
// the terminal transition is a conditional update guarded by
// outcome_reported_at, so a duplicate report of an already-recorded outcome
// short-circuits instead of erroring or double-counting.
func (s *Service) ReportOutcome(ctx context.Context, replyID string, success bool, errorMessage string) (*domain.OutcomeResponse, error) {
	reply, err := s.store.GetReply(ctx, replyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reply: %w", err)
	}
	if reply == nil {
		return nil, fmt.Errorf("reply %s not found", replyID)
	}

	if reply.Status.IsTerminal() {
		log.Printf("outcome: reply %s already terminal (%s), skipping", replyID, reply.Status)
		return &domain.OutcomeResponse{Success: true, AlreadyReported: true}, nil
	}

	if success {
		updated, err := s.store.FinishReplyPublished(ctx, replyID)
		if err != nil {
			return nil, fmt.Errorf("failed to mark reply published: %w", err)
		}
		if !updated {
			// Lost to a concurrent duplicate report, or the staleness sweep
			// already reverted the claim. Either way the outcome is owned
			// elsewhere.
			return &domain.OutcomeResponse{Success: true, AlreadyReported: true}, nil
		}

		if err := s.store.MarkItemAnswered(ctx, reply.TargetKind(), reply.TargetID()); err != nil {
			log.Printf("WARN: outcome: failed to mark %s %s answered: %v", reply.TargetKind(), reply.TargetID(), err)
		}
		return &domain.OutcomeResponse{Success: true}, nil
	}

	if errorMessage == "" {
		errorMessage = "unknown error"
	}
	updated, err := s.store.FinishReplyFailed(ctx, replyID, errorMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to mark reply failed: %w", err)
	}
	if !updated {
		return &domain.OutcomeResponse{Success: true, AlreadyReported: true}, nil
	}
	return &domain.OutcomeResponse{Success: true}, nil
}
