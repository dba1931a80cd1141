package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/xiaot623/replyflow/internal/domain"
	store "github.com/xiaot623/replyflow/internal/repository"
)

func NewTestSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// NewTestMarketplace inserts a marketplace the tests can attach items to.
func NewTestMarketplace(t *testing.T, s *store.SQLiteStore) *domain.Marketplace {
	t.Helper()

	m := &domain.Marketplace{
		MarketplaceID: "mp-test",
		SellerID:      "seller-1",
		Name:          "Test Marketplace",
		CreatedAt:     time.Now(),
	}
	if err := s.CreateMarketplace(context.Background(), m); err != nil {
		t.Fatalf("failed to create marketplace: %v", err)
	}
	return m
}
