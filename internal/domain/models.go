package domain

import "time"

// Marketplace represents one connected seller account.
type Marketplace struct {
	MarketplaceID    string    `json:"marketplace_id"`
	SellerID         string    `json:"seller_id"`
	Name             string    `json:"name,omitempty"`
	KillSwitchActive bool      `json:"kill_switch_active"`
	KillSwitchReason string    `json:"kill_switch_reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Review is a customer review observed by the collector. The sync side owns
// is_answered; the reply side never writes it except on a confirmed publish.
type Review struct {
	ReviewID          string    `json:"review_id"`
	MarketplaceID     string    `json:"marketplace_id"`
	ExternalID        string    `json:"external_id"`
	ProductExternalID string    `json:"product_external_id"`
	ProductOfferID    string    `json:"product_offer_id,omitempty"`
	ProductName       string    `json:"product_name,omitempty"`
	AuthorName        string    `json:"author_name,omitempty"`
	Text              string    `json:"text"`
	Rating            int       `json:"rating"`
	IsAnswered        bool      `json:"is_answered"`
	CreatedAt         time.Time `json:"created_at"`
}

// Question is a customer question observed by the collector.
type Question struct {
	QuestionID        string    `json:"question_id"`
	MarketplaceID     string    `json:"marketplace_id"`
	ExternalID        string    `json:"external_id"`
	ProductExternalID string    `json:"product_external_id"`
	ProductOfferID    string    `json:"product_offer_id,omitempty"`
	ProductName       string    `json:"product_name,omitempty"`
	AuthorName        string    `json:"author_name,omitempty"`
	Text              string    `json:"text"`
	IsAnswered        bool      `json:"is_answered"`
	CreatedAt         time.Time `json:"created_at"`
}

// Reply is a drafted or queued response to exactly one review or question.
// Exactly one of ReviewID / QuestionID is set.
type Reply struct {
	ReplyID           string      `json:"reply_id"`
	MarketplaceID     string      `json:"marketplace_id"`
	ReviewID          string      `json:"review_id,omitempty"`
	QuestionID        string      `json:"question_id,omitempty"`
	Content           string      `json:"content"`
	Tone              string      `json:"tone,omitempty"`
	Mode              ReplyMode   `json:"mode"`
	Status            ReplyStatus `json:"status"`
	ErrorMessage      string      `json:"error_message,omitempty"`
	ScheduledAt       *time.Time  `json:"scheduled_at,omitempty"`
	CanCancelUntil    *time.Time  `json:"can_cancel_until,omitempty"`
	PublishedAt       *time.Time  `json:"published_at,omitempty"`
	OutcomeReportedAt *time.Time  `json:"outcome_reported_at,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// TargetKind returns which item kind the reply addresses.
func (r *Reply) TargetKind() ItemKind {
	if r.QuestionID != "" {
		return ItemKindQuestion
	}
	return ItemKindReview
}

// TargetID returns the internal id of the addressed item.
func (r *Reply) TargetID() string {
	if r.QuestionID != "" {
		return r.QuestionID
	}
	return r.ReviewID
}

// PendingReply is one claimed unit of work handed to an agent: everything it
// needs to locate the item in the seller UI and post the text.
type PendingReply struct {
	ReplyID    string   `json:"reply_id"`
	Kind       ItemKind `json:"kind"`
	ExternalID string   `json:"external_id"`
	Text       string   `json:"text"`
}
