package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/xiaot623/replyflow/internal/agent/backend"
	"github.com/xiaot623/replyflow/internal/agent/bridge"
	"github.com/xiaot623/replyflow/internal/agent/collector"
	"github.com/xiaot623/replyflow/internal/agent/runtime"
	"github.com/xiaot623/replyflow/internal/agent/state"
	"github.com/xiaot623/replyflow/internal/config"
	"github.com/xiaot623/replyflow/internal/domain"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting agent...")
	log.Printf("Backend: %s", cfg.BackendURL)
	log.Printf("Bridge: %s", cfg.BridgeURL)
	log.Printf("State file: %s", cfg.StateFile)

	// Load persisted session state
	st, err := state.Open(cfg.StateFile)
	if err != nil {
		log.Fatalf("Failed to open state store: %v", err)
	}

	// Environment overrides for session identity
	if cfg.MarketplaceID != "" || cfg.SellerID != "" {
		if err := st.UpdateSession(func(s *state.SessionState) {
			if cfg.MarketplaceID != "" {
				s.MarketplaceID = cfg.MarketplaceID
			}
			if cfg.SellerID != "" {
				s.SellerID = cfg.SellerID
			}
		}); err != nil {
			log.Fatalf("Failed to persist session identity: %v", err)
		}
	}
	session := st.Session()
	if session.MarketplaceID == "" {
		log.Fatalf("No marketplace configured: set MARKETPLACE_ID")
	}
	if session.SessionStatus == domain.SessionStatusInactive {
		if err := st.UpdateSession(func(s *state.SessionState) {
			s.SessionStatus = domain.SessionStatusActive
			s.AutoScanEnabled = true
		}); err != nil {
			log.Fatalf("Failed to activate session: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect the posting bridge
	poster := bridge.NewClient(cfg.BridgeURL)
	if err := poster.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect posting bridge: %v", err)
	}
	defer poster.Close()

	coll := collector.New(collector.NewHTTPListingClient(cfg.SellerAPIURL))
	be := backend.NewClient(cfg.BackendURL)

	agent := runtime.New(cfg, st, coll, be, poster)
	go agent.Run(ctx)

	log.Printf("Agent running for marketplace %s (seller %s)", session.MarketplaceID, session.SellerID)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down agent...")
	cancel()
	log.Println("Agent stopped")
}
