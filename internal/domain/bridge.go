package domain

// Message types exchanged with the in-page posting bridge over WebSocket.
const (
	BridgeTypePing          = "ping"
	BridgeTypePong          = "pong"
	BridgeTypePublishReply  = "publish_reply"
	BridgeTypePublishResult = "publish_result"
)

// PublishCommand asks the posting bridge to drive one UI posting flow.
type PublishCommand struct {
	Type       string   `json:"type"`
	ReplyID    string   `json:"reply_id"`
	Kind       ItemKind `json:"kind"`
	ExternalID string   `json:"external_id"`
	Text       string   `json:"text"`
}

// PublishResult is the bridge's outcome message, correlated by ReplyID.
// Error carries AUTH_REQUIRED / CAPTCHA_DETECTED when the session broke.
type PublishResult struct {
	Type    string `json:"type"`
	ReplyID string `json:"reply_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
