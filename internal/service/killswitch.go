package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/xiaot623/replyflow/internal/domain"
)

// TripKillSwitch halts automation for a marketplace. One-way until a human
// resets it after re-authenticating.
func (s *Service) TripKillSwitch(ctx context.Context, marketplaceID, reason string) error {
	marketplace, err := s.store.GetMarketplace(ctx, marketplaceID)
	if err != nil {
		return fmt.Errorf("failed to get marketplace: %w", err)
	}
	if marketplace == nil {
		return ErrMarketplaceNotFound
	}
	if marketplace.KillSwitchActive {
		return nil
	}
	if err := s.store.SetKillSwitch(ctx, marketplaceID, true, reason); err != nil {
		return fmt.Errorf("failed to set kill switch: %w", err)
	}
	log.Printf("kill-switch tripped for marketplace %s: %s", marketplaceID, reason)
	return nil
}

// ResetKillSwitch re-arms automation after a human re-authenticated.
func (s *Service) ResetKillSwitch(ctx context.Context, marketplaceID string) error {
	marketplace, err := s.store.GetMarketplace(ctx, marketplaceID)
	if err != nil {
		return fmt.Errorf("failed to get marketplace: %w", err)
	}
	if marketplace == nil {
		return ErrMarketplaceNotFound
	}
	if err := s.store.SetKillSwitch(ctx, marketplaceID, false, ""); err != nil {
		return fmt.Errorf("failed to reset kill switch: %w", err)
	}
	log.Printf("kill-switch reset for marketplace %s", marketplaceID)
	return nil
}

// CreateMarketplace registers a seller account.
func (s *Service) CreateMarketplace(ctx context.Context, req *domain.CreateMarketplaceRequest) (*domain.Marketplace, error) {
	marketplace := &domain.Marketplace{
		MarketplaceID: uuid.NewString(),
		SellerID:      req.SellerID,
		Name:          req.Name,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateMarketplace(ctx, marketplace); err != nil {
		return nil, fmt.Errorf("failed to create marketplace: %w", err)
	}
	return marketplace, nil
}

// GetMarketplace retrieves a marketplace by ID.
func (s *Service) GetMarketplace(ctx context.Context, marketplaceID string) (*domain.Marketplace, error) {
	return s.store.GetMarketplace(ctx, marketplaceID)
}
