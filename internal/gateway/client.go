package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/logger"
)

// Charge statuses reported by the payment gateway.
const (
	ChargeStatusInitiated = "INITIATED"
	ChargeStatusPaid      = "PAID"
	ChargeStatusCaptured  = "CAPTURED"
	ChargeStatusFailed    = "FAILED"
	ChargeStatusVoided    = "VOIDED"
)

// IsSuccess reports whether the charge status means the money arrived.
func IsSuccess(status string) bool {
	return status == ChargeStatusPaid || status == ChargeStatusCaptured
}

// IsFailure reports whether the charge was declined or errored.
func IsFailure(status string) bool {
	return status == ChargeStatusFailed
}

// IsCancelled reports whether the charge was voided before capture.
func IsCancelled(status string) bool {
	return status == ChargeStatusVoided
}

type ChargeRequest struct {
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Description     string `json:"description"`
	PaymentMethod   string `json:"payment_method"`
	ReferenceNumber string `json:"reference_number"`
	CallbackURL     string `json:"callback_url,omitempty"`
}

type Charge struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	PaymentURL    string `json:"payment_url,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// Client is the HTTP client for the external payment gateway. Every call
// has a bounded timeout; a gateway that cannot be reached surfaces
// domain.ErrGatewayUnavailable instead of hanging the caller.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateCharge registers a new charge with the gateway and returns the
// hosted payment URL the client must be redirected to.
func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	logger.ExternalServiceCall("gateway", "CreateCharge", "reference", req.ReferenceNumber, "amount", req.Amount)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode charge request: %w", err)
	}

	charge, err := c.do(ctx, http.MethodPost, "/v1/charges", bytes.NewReader(body))
	logger.ExternalServiceResult("gateway", "CreateCharge", err, "reference", req.ReferenceNumber)
	return charge, err
}

// FetchCharge queries the current charge status, used by the status-poll
// fallback when webhooks are delayed or lost.
func (c *Client) FetchCharge(ctx context.Context, chargeID string) (*Charge, error) {
	logger.ExternalServiceCall("gateway", "FetchCharge", "chargeID", chargeID)

	charge, err := c.do(ctx, http.MethodGet, "/v1/charges/"+chargeID, nil)
	logger.ExternalServiceResult("gateway", "FetchCharge", err, "chargeID", chargeID)
	return charge, err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*Charge, error) {
	if c.baseURL == "" || c.secretKey == "" {
		return nil, fmt.Errorf("gateway not configured: %w", domain.ErrGatewayUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request %s %s: %w: %v", method, path, domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("gateway returned %d: %w", resp.StatusCode, domain.ErrGatewayUnavailable)
	}
	if resp.StatusCode >= 400 {
		var gwErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &gwErr)
		return nil, fmt.Errorf("gateway rejected request (%d): %s", resp.StatusCode, gwErr.Message)
	}

	charge := &Charge{}
	if err := json.Unmarshal(data, charge); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	return charge, nil
}
