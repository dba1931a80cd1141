package service

import (
	"context"
	"log"
	"time"
)

// RunStaleClaimMonitor periodically returns stale publishing replies to
// scheduled, independently of claim traffic. ClaimBatch performs the same
// recovery inline; this monitor covers marketplaces no agent is polling.
func (s *Service) RunStaleClaimMonitor(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepStaleClaims(ctx)
		}
	}
}

func (s *Service) sweepStaleClaims(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	recovered, err := s.store.RevertAllStaleClaims(sweepCtx, s.now().Add(-s.config.StaleWindow))
	if err != nil {
		log.Printf("WARN: stale claim sweep failed: %v", err)
		return
	}
	if recovered > 0 {
		log.Printf("stale claim sweep recovered %d replies", recovered)
	}
}
