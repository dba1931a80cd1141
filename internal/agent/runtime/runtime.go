// Package runtime drives the agent's scan and publish cycles and reconciles
// publish outcomes back to the backend exactly once.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/xiaot623/replyflow/internal/agent/backend"
	"github.com/xiaot623/replyflow/internal/agent/collector"
	"github.com/xiaot623/replyflow/internal/agent/state"
	"github.com/xiaot623/replyflow/internal/config"
	"github.com/xiaot623/replyflow/internal/domain"
)

const (
	publishRetries  = 3
	reportRetries   = 3
	reportRetryWait = 2 * time.Second
)

// BackendClient is the slice of the backend API the runtime needs.
type BackendClient interface {
	ClaimBatch(ctx context.Context, marketplaceID string, limit int) ([]domain.PendingReply, error)
	ReportOutcome(ctx context.Context, replyID string, success bool, errorMessage string) (*domain.OutcomeResponse, error)
	SyncItems(ctx context.Context, req *domain.SyncRequest) (*domain.SyncResponse, error)
	TripKillSwitch(ctx context.Context, marketplaceID, reason string) error
}

// Poster drives one DOM posting interaction per command and streams back
// correlated outcome messages.
type Poster interface {
	Publish(ctx context.Context, cmd domain.PublishCommand) error
	Results() <-chan domain.PublishResult
	Reinject(ctx context.Context) error
}

// ItemCollector is the slice of the collector the runtime needs.
type ItemCollector interface {
	CollectReviews(ctx context.Context, sellerID string, mode domain.ScanMode, watermark time.Time) ([]domain.ScannedReview, time.Time, error)
	CollectQuestions(ctx context.Context, sellerID string, mode domain.ScanMode, watermark time.Time) ([]domain.ScannedQuestion, time.Time, error)
}

// Agent is the long-lived background process of one automation agent
// instance.
type Agent struct {
	cfg       *config.Config
	state     *state.Store
	collector ItemCollector
	backend   BackendClient
	poster    Poster

	// In-flight publish futures keyed by reply id, resolved by the outcome
	// dispatch loop.
	inFlightMu sync.Mutex
	inFlight   map[string]chan domain.PublishResult

	// Outcomes already reconciled in this process. Guards against duplicate
	// delivery; not shared across agent instances.
	processedMu sync.Mutex
	processed   map[string]bool

	outcomeLocks *KeyedMutex

	// Publish cycle busy guard. Overlapping ticker fires never run two
	// cycles concurrently.
	cycleMu sync.Mutex
	busy    bool

	rand  *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an agent runtime.
func New(cfg *config.Config, st *state.Store, coll ItemCollector, be BackendClient, poster Poster) *Agent {
	return &Agent{
		cfg:          cfg,
		state:        st,
		collector:    coll,
		backend:      be,
		poster:       poster,
		inFlight:     make(map[string]chan domain.PublishResult),
		processed:    make(map[string]bool),
		outcomeLocks: NewKeyedMutex(),
		rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:        sleepCtx,
	}
}

// Run starts the outcome dispatch loop and both periodic triggers, blocking
// until the context is cancelled.
func (a *Agent) Run(ctx context.Context) {
	go a.dispatchOutcomes(ctx)

	scanTicker := time.NewTicker(a.cfg.ScanInterval)
	defer scanTicker.Stop()
	publishTicker := time.NewTicker(a.cfg.PublishInterval)
	defer publishTicker.Stop()

	log.Printf("agent runtime started (scan every %s, publish every %s)", a.cfg.ScanInterval, a.cfg.PublishInterval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-scanTicker.C:
			a.RunScan(ctx, domain.ScanModeLive)
		case <-publishTicker.C:
			a.AttemptPublishCycle(ctx)
		}
	}
}

// RunScan collects new items for both kinds and forwards them to ingestion.
func (a *Agent) RunScan(ctx context.Context, mode domain.ScanMode) {
	session := a.state.Session()
	if session.SessionStatus != domain.SessionStatusActive || !session.AutoScanEnabled {
		return
	}

	reviews, newestReview, err := a.collector.CollectReviews(ctx, session.SellerID, mode, a.state.Watermark(domain.ItemKindReview))
	if err != nil {
		a.handleScanError(ctx, err)
		return
	}
	questions, newestQuestion, err := a.collector.CollectQuestions(ctx, session.SellerID, mode, a.state.Watermark(domain.ItemKindQuestion))
	if err != nil {
		a.handleScanError(ctx, err)
		return
	}

	now := time.Now()
	total := len(reviews) + len(questions)
	if err := a.state.UpdateSession(func(s *state.SessionState) {
		s.LastScanAt = &now
		s.LastScanCount = total
		s.LastError = ""
		s.FailCount = 0
	}); err != nil {
		log.Printf("WARN: scan: failed to persist session state: %v", err)
	}

	if total == 0 {
		return
	}

	_, err = a.backend.SyncItems(ctx, &domain.SyncRequest{
		MarketplaceID: session.MarketplaceID,
		Reviews:       reviews,
		Questions:     questions,
	})
	if err != nil {
		log.Printf("WARN: scan: sync upload failed: %v", err)
		return
	}

	// Advance watermarks only after the upload landed, so a failed sync is
	// re-collected next scan instead of lost.
	if !newestReview.IsZero() {
		if err := a.state.AdvanceWatermark(domain.ItemKindReview, newestReview); err != nil {
			log.Printf("WARN: scan: failed to advance review watermark: %v", err)
		}
	}
	if !newestQuestion.IsZero() {
		if err := a.state.AdvanceWatermark(domain.ItemKindQuestion, newestQuestion); err != nil {
			log.Printf("WARN: scan: failed to advance question watermark: %v", err)
		}
	}

	log.Printf("scan: collected %d reviews, %d questions", len(reviews), len(questions))
}

func (a *Agent) handleScanError(ctx context.Context, err error) {
	if errors.Is(err, collector.ErrAuthRequired) {
		a.TripKillSwitch(ctx, domain.SignalAuthRequired)
		return
	}
	if errors.Is(err, collector.ErrCaptchaDetected) {
		a.TripKillSwitch(ctx, domain.SignalCaptchaDetected)
		return
	}
	log.Printf("WARN: scan failed: %v", err)
	if uerr := a.state.UpdateSession(func(s *state.SessionState) {
		s.LastError = err.Error()
		s.FailCount++
	}); uerr != nil {
		log.Printf("WARN: scan: failed to persist session state: %v", uerr)
	}
}

// AttemptPublishCycle claims a batch and publishes it in order. A cycle
// already in progress makes this call a no-op.
func (a *Agent) AttemptPublishCycle(ctx context.Context) {
	a.cycleMu.Lock()
	if a.busy {
		a.cycleMu.Unlock()
		return
	}
	a.busy = true
	a.cycleMu.Unlock()
	defer func() {
		a.cycleMu.Lock()
		a.busy = false
		a.cycleMu.Unlock()
	}()

	session := a.state.Session()
	if session.SessionStatus != domain.SessionStatusActive || session.MarketplaceID == "" {
		return
	}

	batch, err := a.backend.ClaimBatch(ctx, session.MarketplaceID, 0)
	if err != nil {
		if errors.Is(err, backend.ErrSuspended) {
			log.Printf("publish: backend suspended automation, pausing session")
			if uerr := a.state.UpdateSession(func(s *state.SessionState) {
				s.SessionStatus = domain.SessionStatusPaused
				s.LastError = domain.ErrCodeAutomationSuspended
			}); uerr != nil {
				log.Printf("WARN: publish: failed to persist session state: %v", uerr)
			}
			return
		}
		log.Printf("WARN: publish: claim failed: %v", err)
		return
	}
	if len(batch) == 0 {
		return
	}

	log.Printf("publish: claimed %d replies", len(batch))

	for _, reply := range batch {
		if a.state.Session().SessionStatus != domain.SessionStatusActive {
			break
		}
		if a.isProcessed(reply.ReplyID) {
			log.Printf("WARN: publish: reply %s already handled, skipping", reply.ReplyID)
			continue
		}

		if err := a.publishOne(ctx, reply); err != nil {
			log.Printf("WARN: publish: reply %s failed: %v", reply.ReplyID, err)
			if isSessionSignal(err.Error()) {
				a.TripKillSwitch(ctx, err.Error())
				break
			}
		}

		if err := a.sleep(ctx, a.publishDelay()); err != nil {
			return
		}
	}
}

// publishOne drives one posting interaction and awaits its outcome. Send
// failures are retried with growing backoff and a bridge re-injection; an
// outcome timeout is not retried, the claim stays publishing for the
// staleness sweep.
func (a *Agent) publishOne(ctx context.Context, reply domain.PendingReply) error {
	future := a.registerFuture(reply.ReplyID)
	defer a.dropFuture(reply.ReplyID)

	cmd := domain.PublishCommand{
		ReplyID:    reply.ReplyID,
		Kind:       reply.Kind,
		ExternalID: reply.ExternalID,
		Text:       reply.Text,
	}

	var sendErr error
	for attempt := 0; attempt < publishRetries; attempt++ {
		if attempt > 0 {
			if err := a.sleep(ctx, time.Duration(attempt)*2*time.Second); err != nil {
				return err
			}
			if err := a.poster.Reinject(ctx); err != nil {
				sendErr = err
				continue
			}
		}
		if sendErr = a.poster.Publish(ctx, cmd); sendErr == nil {
			break
		}
		log.Printf("WARN: publish: send attempt %d/%d for reply %s failed: %v", attempt+1, publishRetries, reply.ReplyID, sendErr)
	}
	if sendErr != nil {
		return fmt.Errorf("failed to dispatch publish command: %w", sendErr)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case result := <-future:
		if result.Success {
			return nil
		}
		if result.Error != "" {
			return errors.New(result.Error)
		}
		return errors.New(result.Message)
	case <-time.After(a.cfg.PublishTimeout):
		// Unknown outcome. Leave the reply publishing and reclaimable.
		return fmt.Errorf("no outcome for reply %s within %s", reply.ReplyID, a.cfg.PublishTimeout)
	}
}

// dispatchOutcomes feeds bridge outcome messages into reconciliation.
func (a *Agent) dispatchOutcomes(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case result := <-a.poster.Results():
			go a.ReconcilePublishOutcome(ctx, result)
		}
	}
}

// ReconcilePublishOutcome records one outcome exactly once. The per-reply
// lock serializes duplicate deliveries of the same message; the processed
// marker makes the second delivery a no-op. The marker is set only after the
// backend call concluded, so a crash mid-reconciliation reprocesses the
// outcome rather than losing it.
func (a *Agent) ReconcilePublishOutcome(ctx context.Context, result domain.PublishResult) {
	replyID := result.ReplyID

	a.outcomeLocks.Lock(replyID)
	defer a.outcomeLocks.Unlock(replyID)

	if a.isProcessed(replyID) {
		log.Printf("WARN: outcome: reply %s already reconciled, skipping", replyID)
		return
	}

	a.resolveFuture(replyID, result)

	errorMessage := result.Error
	if errorMessage == "" {
		errorMessage = result.Message
	}

	var reported bool
	for attempt := 1; attempt <= reportRetries; attempt++ {
		if _, err := a.backend.ReportOutcome(ctx, replyID, result.Success, errorMessage); err == nil {
			reported = true
			break
		} else {
			log.Printf("WARN: outcome: report attempt %d/%d for reply %s failed: %v", attempt, reportRetries, replyID, err)
			if attempt < reportRetries {
				if serr := a.sleep(ctx, reportRetryWait); serr != nil {
					return
				}
			}
		}
	}
	if !reported {
		log.Printf("WARN: outcome: giving up reporting reply %s after %d attempts", replyID, reportRetries)
	}

	a.markProcessed(replyID)

	if !result.Success && isSessionSignal(result.Error) {
		a.TripKillSwitch(ctx, result.Error)
	}
}

// TripKillSwitch pauses the local session and mirrors the halt to the
// backend. One-way until a human re-authenticates and resets out-of-band.
func (a *Agent) TripKillSwitch(ctx context.Context, reason string) {
	log.Printf("kill-switch tripped: %s", reason)

	session := a.state.Session()
	if err := a.state.UpdateSession(func(s *state.SessionState) {
		s.SessionStatus = domain.SessionStatusPaused
		s.LastError = reason
	}); err != nil {
		log.Printf("WARN: kill-switch: failed to persist session state: %v", err)
	}

	if session.MarketplaceID != "" {
		if err := a.backend.TripKillSwitch(ctx, session.MarketplaceID, reason); err != nil {
			log.Printf("WARN: kill-switch: failed to notify backend: %v", err)
		}
	}
}

func (a *Agent) registerFuture(replyID string) chan domain.PublishResult {
	a.inFlightMu.Lock()
	defer a.inFlightMu.Unlock()
	future := make(chan domain.PublishResult, 1)
	a.inFlight[replyID] = future
	return future
}

func (a *Agent) dropFuture(replyID string) {
	a.inFlightMu.Lock()
	defer a.inFlightMu.Unlock()
	delete(a.inFlight, replyID)
}

func (a *Agent) resolveFuture(replyID string, result domain.PublishResult) {
	a.inFlightMu.Lock()
	defer a.inFlightMu.Unlock()
	if future, ok := a.inFlight[replyID]; ok {
		select {
		case future <- result:
		default:
		}
		delete(a.inFlight, replyID)
	}
}

func (a *Agent) isProcessed(replyID string) bool {
	a.processedMu.Lock()
	defer a.processedMu.Unlock()
	return a.processed[replyID]
}

func (a *Agent) markProcessed(replyID string) {
	a.processedMu.Lock()
	defer a.processedMu.Unlock()
	a.processed[replyID] = true
}

// publishDelay returns a randomized pause between publish attempts, bounded
// by the configured jitter window.
func (a *Agent) publishDelay() time.Duration {
	window := a.cfg.MaxPublishDelay - a.cfg.MinPublishDelay
	if window <= 0 {
		return a.cfg.MinPublishDelay
	}
	return a.cfg.MinPublishDelay + time.Duration(a.rand.Int63n(int64(window)))
}

func isSessionSignal(message string) bool {
	return strings.Contains(message, domain.SignalAuthRequired) ||
		strings.Contains(message, "CAPTCHA")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
