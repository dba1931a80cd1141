package domain

// ClaimRequest asks the backend to reserve a batch of scheduled replies.
type ClaimRequest struct {
	MarketplaceID string `json:"marketplace_id"`
	Limit         int    `json:"limit,omitempty"`
}

// ClaimResponse carries the awarded batch, in publication order.
type ClaimResponse struct {
	Replies []PendingReply `json:"replies"`
}

// OutcomeRequest reports the result of one publish attempt.
type OutcomeRequest struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// OutcomeResponse acknowledges an outcome report. AlreadyReported is set when
// the reply had reached a terminal state before this call, which makes
// duplicate reports a no-op rather than an error.
type OutcomeResponse struct {
	Success         bool `json:"success"`
	AlreadyReported bool `json:"already_reported,omitempty"`
}

// ScannedReview is the normalized review shape emitted by the collector.
type ScannedReview struct {
	ExternalID        string `json:"external_id"`
	ProductExternalID string `json:"product_external_id"`
	ProductOfferID    string `json:"product_offer_id,omitempty"`
	ProductName       string `json:"product_name,omitempty"`
	AuthorName        string `json:"author_name,omitempty"`
	Text              string `json:"text"`
	Rating            int    `json:"rating"`
	IsAnswered        bool   `json:"is_answered"`
	CreatedAt         string `json:"created_at"`
}

// ScannedQuestion is the normalized question shape emitted by the collector.
type ScannedQuestion struct {
	ExternalID        string `json:"external_id"`
	ProductExternalID string `json:"product_external_id"`
	ProductOfferID    string `json:"product_offer_id,omitempty"`
	ProductName       string `json:"product_name,omitempty"`
	AuthorName        string `json:"author_name,omitempty"`
	Text              string `json:"text"`
	IsAnswered        bool   `json:"is_answered"`
	CreatedAt         string `json:"created_at"`
}

// SyncRequest is the agent's upload of newly observed items.
type SyncRequest struct {
	MarketplaceID string            `json:"marketplace_id"`
	Reviews       []ScannedReview   `json:"reviews"`
	Questions     []ScannedQuestion `json:"questions"`
	AgentVersion  string            `json:"agent_version,omitempty"`
}

// SyncResponse reports how the upload was applied.
type SyncResponse struct {
	ReviewsUpserted   int `json:"reviews_upserted"`
	QuestionsUpserted int `json:"questions_upserted"`
	Skipped           int `json:"skipped"`
}

// ModeSettings is the per-rating auto-reply configuration a seller picked.
// Keys of ReviewModes are ratings 1..5.
type ModeSettings struct {
	ReviewModes   map[int]string `json:"review_modes"`
	QuestionsMode string         `json:"questions_mode"`
}

// ApplyModesRequest re-evaluates drafted and scheduled replies against the
// current mode settings.
type ApplyModesRequest struct {
	MarketplaceID string       `json:"marketplace_id"`
	Settings      ModeSettings `json:"settings"`
}

// ApplyModesResponse summarizes the transitions performed.
type ApplyModesResponse struct {
	Scheduled int `json:"scheduled"`
	Demoted   int `json:"demoted"`
}

// KillSwitchRequest trips a marketplace's kill-switch with a reason.
type KillSwitchRequest struct {
	Reason string `json:"reason"`
}

// CreateMarketplaceRequest registers a seller account.
type CreateMarketplaceRequest struct {
	SellerID string `json:"seller_id"`
	Name     string `json:"name,omitempty"`
}
