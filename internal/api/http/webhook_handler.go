package http

import (
	"errors"
	"io"
	"net/http"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/gateway"
	"consulthub-ledger/internal/service"
)

const (
	// WebhookSourcePayment identifies the payment gateway in the webhook log.
	WebhookSourcePayment = "payment_gateway"

	signatureHeader = "X-Gateway-Signature"

	// Webhook bodies are small JSON documents; anything larger is abuse.
	maxWebhookBody = 1 << 20
)

type WebhookHandler struct {
	webhookSvc service.WebhookService
}

func NewWebhookHandler(webhookSvc service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// HandlePaymentWebhook is unauthenticated; trust comes from the HMAC
// signature over the raw body.
func (h *WebhookHandler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable request body"})
		return
	}
	defer r.Body.Close()

	result, err := h.webhookSvc.Ingest(r.Context(), WebhookSourcePayment, body, r.Header.Get(signatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrMalformedEvent):
			// A body the gateway cannot re-send in better shape; a 5xx
			// would make it retry forever.
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed webhook payload"})
		case errors.Is(err, domain.ErrInvalidSignature):
			respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid signature"})
		case errors.Is(err, domain.ErrNotFound):
			respondJSON(w, http.StatusNotFound, errorResponse{Error: "no matching deposit"})
		default:
			respondError(w, err)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"received":  true,
		"duplicate": result.Duplicate,
	})
}
