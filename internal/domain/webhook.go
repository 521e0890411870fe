package domain

import "time"

type WebhookStatus string

const (
	WebhookStatusReceived   WebhookStatus = "RECEIVED"
	WebhookStatusProcessing WebhookStatus = "PROCESSING"
	WebhookStatusProcessed  WebhookStatus = "PROCESSED"
	WebhookStatusFailed     WebhookStatus = "FAILED"
	WebhookStatusIgnored    WebhookStatus = "IGNORED"
)

// WebhookLog is the audit and idempotency record for every inbound gateway
// event. (Source, EventID) is unique; redeliveries bump AttemptCount and
// set IsDuplicate without re-applying side effects. Rows are never deleted.
type WebhookLog struct {
	ID             int64         `json:"id"`
	Source         string        `json:"source"`
	EventID        string        `json:"event_id"`
	EventType      string        `json:"event_type"`
	Status         WebhookStatus `json:"status"`
	AttemptCount   int32         `json:"attempt_count"`
	IsDuplicate    bool          `json:"is_duplicate"`
	SignatureValid bool          `json:"signature_valid"`
	Payload        string        `json:"payload"`
	ProcessingNote string        `json:"processing_note,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	ProcessedAt    *time.Time    `json:"processed_at,omitempty"`
}
