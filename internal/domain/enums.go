// Package domain defines the core domain models for the reply pipeline.
package domain

// ReplyStatus represents the lifecycle status of a reply.
type ReplyStatus string

const (
	ReplyStatusDrafted    ReplyStatus = "drafted"
	ReplyStatusScheduled  ReplyStatus = "scheduled"
	ReplyStatusPublishing ReplyStatus = "publishing"
	ReplyStatusPublished  ReplyStatus = "published"
	ReplyStatusFailed     ReplyStatus = "failed"
)

// IsTerminal reports whether the status is final for a reply.
func (s ReplyStatus) IsTerminal() bool {
	return s == ReplyStatusPublished || s == ReplyStatusFailed
}

// ReplyMode represents how a reply gets scheduled.
type ReplyMode string

const (
	ReplyModeManual ReplyMode = "manual"
	ReplyModeAuto   ReplyMode = "auto"
)

// ItemKind distinguishes reviews from questions.
type ItemKind string

const (
	ItemKindReview   ItemKind = "review"
	ItemKindQuestion ItemKind = "question"
)

// ScanMode selects between incremental and backfill collection.
type ScanMode string

const (
	ScanModeLive ScanMode = "live"
	ScanModeFull ScanMode = "full"
)

// SessionStatus represents the automation session state of an agent.
type SessionStatus string

const (
	SessionStatusInactive SessionStatus = "inactive"
	SessionStatusActive   SessionStatus = "active"
	SessionStatusPaused   SessionStatus = "paused"
	SessionStatusError    SessionStatus = "error"
)

// Machine-readable failure reasons recorded on a reply.
const (
	FailReasonDuplicateInBatch   = "DUPLICATE_IN_BATCH"
	FailReasonExternalIDNotFound = "EXTERNAL_ID_NOT_FOUND"
)

// Signals that trip the kill-switch. They travel untouched from the
// collector or posting bridge up to the agent runtime.
const (
	SignalAuthRequired    = "AUTH_REQUIRED"
	SignalCaptchaDetected = "CAPTCHA_DETECTED"
)

// ErrCodeAutomationSuspended is returned by the claim endpoint while the
// marketplace kill-switch flag is set.
const ErrCodeAutomationSuspended = "AUTOMATION_SUSPENDED"
