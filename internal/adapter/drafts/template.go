package drafts

import (
	"context"
	"fmt"
	"strings"
)

// TemplateGenerator drafts replies from fixed templates. It needs no
// network access and is the fallback when no completion API is configured.
type TemplateGenerator struct{}

// NewTemplateGenerator creates a template draft generator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

var _ Generator = (*TemplateGenerator)(nil)

// Draft returns a canned reply for the item.
func (g *TemplateGenerator) Draft(ctx context.Context, kind, productName, authorName, text string, rating int) (string, string, error) {
	tone := toneFor(kind, rating)
	greeting := "Hello"
	if authorName != "" {
		greeting = fmt.Sprintf("Hello, %s", authorName)
	}

	if kind == "question" {
		content := fmt.Sprintf("%s! Thank you for your question about %s. We will get back to you with the details shortly. If anything is urgent, please contact our support chat.", greeting, productName)
		return content, tone, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s! Thank you for your feedback on %s.", greeting, productName)
	if tone == "apologetic" {
		b.WriteString(" We are sorry the product did not meet your expectations. Please reach out to our support chat so we can make it right.")
	} else {
		b.WriteString(" We are glad you are happy with your purchase and hope to see you again!")
	}
	return b.String(), tone, nil
}
