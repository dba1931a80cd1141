// Package drafts generates reply text for reviews and questions, either
// through an OpenAI-compatible completion API or from canned templates.
package drafts

import (
	"context"
	"log"
	"os"
	"time"
)

// Generator produces a reply draft and the tone it was written in.
type Generator interface {
	Draft(ctx context.Context, kind, productName, authorName, text string, rating int) (content string, tone string, err error)
}

const (
	// EnvDraftMode selects the generator implementation.
	EnvDraftMode = "DRAFT_MODE"
	// ModeTemplate forces the offline template generator.
	ModeTemplate = "TEMPLATE"
)

// NewGenerator picks a generator based on the DRAFT_MODE environment
// variable. DRAFT_MODE=TEMPLATE or an empty base URL selects the offline
// template generator; otherwise drafts come from the completion API.
func NewGenerator(baseURL, apiKey, model string, timeout time.Duration) Generator {
	if os.Getenv(EnvDraftMode) == ModeTemplate || baseURL == "" {
		log.Println("using template draft generator")
		return NewTemplateGenerator()
	}
	return NewLLMGenerator(baseURL, apiKey, model, timeout)
}
