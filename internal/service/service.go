// Package service implements the backend coordination logic: claim awards,
// outcome reconciliation, ingestion, and scheduling policy.
package service

import (
	"context"
	"time"

	"github.com/xiaot623/replyflow/internal/config"
	store "github.com/xiaot623/replyflow/internal/repository"
	"github.com/xiaot623/replyflow/policy"
)

// DraftGenerator produces reply text for one item. The real implementation
// calls an external AI service; tests plug in a canned generator.
type DraftGenerator interface {
	Draft(ctx context.Context, kind, productName, authorName, text string, rating int) (content string, tone string, err error)
}

type Service struct {
	store        store.Store
	config       *config.Config
	policyEngine *policy.Engine
	drafts       DraftGenerator

	now func() time.Time
}

func New(store store.Store, cfg *config.Config, policyEngine *policy.Engine, drafts DraftGenerator) *Service {
	return &Service{
		store:        store,
		config:       cfg,
		policyEngine: policyEngine,
		drafts:       drafts,
		now:          time.Now,
	}
}
