// Package store defines the storage interface and implementations.
package store

import (
	"context"
	"time"

	"github.com/xiaot623/replyflow/internal/domain"
)

// Store defines the interface for data persistence. All reply status writes
// are conditional on the prior status; callers learn from the returned bool
// whether their transition won.
type Store interface {
	// Marketplace operations
	CreateMarketplace(ctx context.Context, m *domain.Marketplace) error
	GetMarketplace(ctx context.Context, marketplaceID string) (*domain.Marketplace, error)
	SetKillSwitch(ctx context.Context, marketplaceID string, active bool, reason string) error

	// Item operations
	UpsertReview(ctx context.Context, review *domain.Review, fingerprint string) (bool, error)
	UpsertQuestion(ctx context.Context, question *domain.Question, fingerprint string) (bool, error)
	GetReview(ctx context.Context, reviewID string) (*domain.Review, error)
	GetQuestion(ctx context.Context, questionID string) (*domain.Question, error)
	ListUnansweredReviews(ctx context.Context, marketplaceID string, limit int) ([]domain.Review, error)
	ListUnansweredQuestions(ctx context.Context, marketplaceID string, limit int) ([]domain.Question, error)
	MarkItemAnswered(ctx context.Context, kind domain.ItemKind, itemID string) error

	// Reply operations
	CreateReply(ctx context.Context, reply *domain.Reply) error
	GetReply(ctx context.Context, replyID string) (*domain.Reply, error)
	HasActiveReplyForTarget(ctx context.Context, kind domain.ItemKind, itemID string) (bool, error)
	ListScheduledReplies(ctx context.Context, marketplaceID string, limit int) ([]domain.Reply, error)
	ListActiveTargets(ctx context.Context, marketplaceID string) (reviewIDs, questionIDs map[string]bool, err error)
	ListRepliesByStatus(ctx context.Context, marketplaceID string, status domain.ReplyStatus) ([]domain.Reply, error)

	// State transitions (conditional updates)
	ScheduleReply(ctx context.Context, replyID string, mode domain.ReplyMode, scheduledAt time.Time) (bool, error)
	DemoteReply(ctx context.Context, replyID string) (bool, error)
	ClaimReply(ctx context.Context, replyID string) (bool, error)
	RevertStaleClaims(ctx context.Context, marketplaceID string, olderThan time.Time) (int, error)
	RevertAllStaleClaims(ctx context.Context, olderThan time.Time) (int, error)
	MarkReplyFailed(ctx context.Context, replyID string, reason string) (bool, error)
	FinishReplyPublished(ctx context.Context, replyID string) (bool, error)
	FinishReplyFailed(ctx context.Context, replyID string, errorMessage string) (bool, error)
	DiscardDraft(ctx context.Context, replyID string) (bool, error)

	// Lifecycle
	Close() error
}
