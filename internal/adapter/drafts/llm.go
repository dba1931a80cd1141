package drafts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const draftSystemPrompt = `You write short, polite seller replies to marketplace reviews and questions in the customer's language. Answer questions factually from the product name; thank reviewers and address complaints without making promises. Reply with the text only.`

// LLMGenerator drafts replies through an OpenAI-compatible chat completion
// endpoint.
type LLMGenerator struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewLLMGenerator creates an LLM-backed draft generator.
func NewLLMGenerator(baseURL, apiKey, model string, timeout time.Duration) *LLMGenerator {
	return &LLMGenerator{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

var _ Generator = (*LLMGenerator)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
}

// Draft generates reply text for one item.
func (g *LLMGenerator) Draft(ctx context.Context, kind, productName, authorName, text string, rating int) (string, string, error) {
	tone := toneFor(kind, rating)

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Item type: %s\nProduct: %s\n", kind, productName)
	if authorName != "" {
		fmt.Fprintf(&prompt, "Customer: %s\n", authorName)
	}
	if rating > 0 {
		fmt.Fprintf(&prompt, "Rating: %d/5\n", rating)
	}
	fmt.Fprintf(&prompt, "Tone: %s\nCustomer text:\n%s", tone, text)

	temperature := 0.7
	maxTokens := 400
	req := &chatCompletionRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: draftSystemPrompt},
			{Role: "user", Content: prompt.String()},
		},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, string(raw))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(raw, &completion); err != nil {
		return "", "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", "", fmt.Errorf("completion API returned no choices")
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", "", fmt.Errorf("completion API returned empty content")
	}
	return content, tone, nil
}

// toneFor maps the item to the register the draft is written in. Low-rated
// reviews get an apologetic reply, the rest a friendly one.
func toneFor(kind string, rating int) string {
	if kind == "review" && rating > 0 && rating <= 3 {
		return "apologetic"
	}
	return "friendly"
}
