package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLLMGeneratorDraft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Fatalf("unexpected auth header: %q", got)
		}
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "Rating: 2/5") {
			t.Fatalf("unexpected messages: %+v", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"  We are sorry to hear that.  "},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	g := NewLLMGenerator(server.URL, "key", "gpt-4o-mini", time.Second)
	content, tone, err := g.Draft(context.Background(), "review", "Widget", "Anna", "broke after a week", 2)
	if err != nil {
		t.Fatalf("Draft failed: %v", err)
	}
	if content != "We are sorry to hear that." {
		t.Fatalf("unexpected content: %q", content)
	}
	if tone != "apologetic" {
		t.Fatalf("expected apologetic tone for a 2-star review, got %q", tone)
	}
}

func TestLLMGeneratorErrors(t *testing.T) {
	t.Run("api error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `{"error":"upstream"}`)
		}))
		defer server.Close()

		g := NewLLMGenerator(server.URL, "", "gpt", time.Second)
		if _, _, err := g.Draft(context.Background(), "question", "Widget", "", "fits?", 0); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("empty content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"   "}}]}`)
		}))
		defer server.Close()

		g := NewLLMGenerator(server.URL, "", "gpt", time.Second)
		if _, _, err := g.Draft(context.Background(), "question", "Widget", "", "fits?", 0); err == nil {
			t.Fatalf("expected error for empty content")
		}
	})
}

func TestTemplateGenerator(t *testing.T) {
	g := NewTemplateGenerator()

	content, tone, err := g.Draft(context.Background(), "review", "Widget", "Anna", "great", 5)
	if err != nil {
		t.Fatalf("Draft failed: %v", err)
	}
	if tone != "friendly" || !strings.Contains(content, "Anna") || !strings.Contains(content, "Widget") {
		t.Fatalf("unexpected draft: %q (%s)", content, tone)
	}

	content, tone, err = g.Draft(context.Background(), "review", "Widget", "", "broken", 1)
	if err != nil {
		t.Fatalf("Draft failed: %v", err)
	}
	if tone != "apologetic" || !strings.Contains(content, "sorry") {
		t.Fatalf("expected apologetic draft, got %q (%s)", content, tone)
	}

	content, _, err = g.Draft(context.Background(), "question", "Widget", "", "does it fit?", 0)
	if err != nil {
		t.Fatalf("Draft failed: %v", err)
	}
	if !strings.Contains(content, "question") {
		t.Fatalf("unexpected question draft: %q", content)
	}
}

func TestNewGeneratorSelection(t *testing.T) {
	t.Setenv(EnvDraftMode, ModeTemplate)
	if _, ok := NewGenerator("http://localhost", "", "gpt", time.Second).(*TemplateGenerator); !ok {
		t.Fatalf("DRAFT_MODE=TEMPLATE must select the template generator")
	}

	t.Setenv(EnvDraftMode, "")
	if _, ok := NewGenerator("", "", "gpt", time.Second).(*TemplateGenerator); !ok {
		t.Fatalf("empty base URL must fall back to the template generator")
	}
	if _, ok := NewGenerator("http://localhost", "", "gpt", time.Second).(*LLMGenerator); !ok {
		t.Fatalf("expected the LLM generator when a base URL is configured")
	}
}
