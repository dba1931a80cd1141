package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xiaot623/replyflow/internal/domain"
)

func TestClientClaimBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/replies/claim" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		var req domain.ClaimRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.MarketplaceID != "mp1" || req.Limit != 5 {
			t.Fatalf("unexpected request: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"replies":[{"reply_id":"rp1","kind":"review","external_id":"ext1","text":"hello"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	batch, err := client.ClaimBatch(context.Background(), "mp1", 5)
	if err != nil {
		t.Fatalf("ClaimBatch failed: %v", err)
	}
	if len(batch) != 1 || batch[0].ReplyID != "rp1" || batch[0].Kind != domain.ItemKindReview {
		t.Fatalf("unexpected batch: %+v", batch)
	}
}

func TestClientClaimBatchSuspended(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":"AUTOMATION_SUSPENDED","replies":[]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ClaimBatch(context.Background(), "mp1", 5)
	if !errors.Is(err, ErrSuspended) {
		t.Fatalf("expected ErrSuspended, got %v", err)
	}
}

func TestClientReportOutcome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/replies/rp1/outcome" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req domain.OutcomeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Success || req.ErrorMessage != "timeout" {
			t.Fatalf("unexpected request: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"already_reported":true}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.ReportOutcome(context.Background(), "rp1", false, "timeout")
	if err != nil {
		t.Fatalf("ReportOutcome failed: %v", err)
	}
	if !resp.AlreadyReported {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestClientTripKillSwitch(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.TripKillSwitch(context.Background(), "mp1", domain.SignalCaptchaDetected); err != nil {
		t.Fatalf("TripKillSwitch failed: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/v1/marketplaces/mp1/kill-switch" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
}

func TestClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"boom"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.SyncItems(context.Background(), &domain.SyncRequest{MarketplaceID: "mp1"}); err == nil {
		t.Fatalf("expected error")
	}
}
