package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedEvent marks a payload the gateway will never deliver in a
// processable form; callers should not ask for a retry.
var ErrMalformedEvent = errors.New("malformed webhook event")

// Event types delivered by the gateway webhook.
const (
	EventTypeChargeCreated = "charge.created"
	EventTypeChargeUpdated = "charge.updated"
)

// Event is the payload the gateway posts to our webhook endpoint.
type Event struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	ChargeID  string `json:"charge_id"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Message   string `json:"message,omitempty"`
	Reference struct {
		Transaction string `json:"transaction"`
	} `json:"reference"`
}

// ParseEvent decodes a webhook payload. Events without an id cannot be
// deduplicated and are rejected.
func ParseEvent(body []byte) (*Event, error) {
	event := &Event{}
	if err := json.Unmarshal(body, event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if event.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedEvent)
	}
	return event, nil
}

// ComputeSignature returns the hex-encoded HMAC-SHA256 of the raw body.
func ComputeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the gateway signature header against the raw
// request body using a constant-time comparison.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(provided, mac.Sum(nil))
}
