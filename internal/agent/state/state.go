// Package state persists the agent's session state and scan cursors across
// process restarts in a local JSON file.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xiaot623/replyflow/internal/domain"
)

// SessionState is the durable per-agent automation state.
type SessionState struct {
	AutoScanEnabled bool                 `json:"auto_scan_enabled"`
	ScanIntervalMin int                  `json:"scan_interval_min"`
	SellerID        string               `json:"seller_id"`
	MarketplaceID   string               `json:"marketplace_id"`
	SessionStatus   domain.SessionStatus `json:"session_status"`
	LastScanAt      *time.Time           `json:"last_scan_at,omitempty"`
	LastScanCount   int                  `json:"last_scan_count"`
	LastError       string               `json:"last_error,omitempty"`
	FailCount       int                  `json:"fail_count"`
}

type fileData struct {
	Session SessionState `json:"session"`
	// Watermarks per item kind: the newest created_at already ingested.
	Watermarks map[string]time.Time `json:"watermarks"`
}

// Store is a file-backed state store.
type Store struct {
	path string
	mu   sync.RWMutex
	data fileData
}

// Open loads state from path, initializing defaults for a fresh install.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		data: fileData{
			Session: SessionState{
				ScanIntervalMin: 10,
				SessionStatus:   domain.SessionStatusInactive,
			},
			Watermarks: make(map[string]time.Time),
		},
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, err
	}
	if s.data.Watermarks == nil {
		s.data.Watermarks = make(map[string]time.Time)
	}
	return s, nil
}

// Session returns a copy of the current session state.
func (s *Store) Session() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Session
}

// UpdateSession applies fn to the session state and persists the result.
func (s *Store) UpdateSession(fn func(*SessionState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.data.Session)
	return s.save()
}

// Watermark returns the stored watermark for an item kind. The zero time
// means no scan has completed yet.
func (s *Store) Watermark(kind domain.ItemKind) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Watermarks[string(kind)]
}

// AdvanceWatermark moves a kind's watermark forward. It never regresses,
// even if items arrived out of order within a page.
func (s *Store) AdvanceWatermark(kind domain.ItemKind, observed time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !observed.After(s.data.Watermarks[string(kind)]) {
		return nil
	}
	s.data.Watermarks[string(kind)] = observed
	return s.save()
}

// save writes through a temp file so a crash mid-write cannot corrupt state.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
