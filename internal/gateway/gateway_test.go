package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"consulthub-ledger/internal/domain"
)

func TestCreateCharge(t *testing.T) {
	t.Run("successful charge creation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/charges", r.URL.Path)
			assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

			var req ChargeRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, int64(20000), req.Amount)
			assert.Equal(t, "SAR", req.Currency)

			json.NewEncoder(w).Encode(Charge{
				ID:         "chg_001",
				Status:     ChargeStatusInitiated,
				Amount:     req.Amount,
				Currency:   req.Currency,
				PaymentURL: "https://pay.example.com/chg_001",
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "sk_test_123", 5*time.Second)
		charge, err := client.CreateCharge(context.Background(), ChargeRequest{
			Amount:          20000,
			Currency:        "SAR",
			ReferenceNumber: "DEP-ABC123DEF456",
			PaymentMethod:   "mada",
		})

		assert.NoError(t, err)
		assert.Equal(t, "chg_001", charge.ID)
		assert.Equal(t, "https://pay.example.com/chg_001", charge.PaymentURL)
	})

	t.Run("gateway server error maps to unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewClient(server.URL, "sk_test_123", 5*time.Second)
		_, err := client.CreateCharge(context.Background(), ChargeRequest{Amount: 100, Currency: "SAR"})

		assert.True(t, errors.Is(err, domain.ErrGatewayUnavailable))
	})

	t.Run("gateway unreachable maps to unavailable", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", "sk_test_123", 200*time.Millisecond)
		_, err := client.CreateCharge(context.Background(), ChargeRequest{Amount: 100, Currency: "SAR"})

		assert.True(t, errors.Is(err, domain.ErrGatewayUnavailable))
	})

	t.Run("client error surfaces gateway message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{"message": "amount below gateway minimum"})
		}))
		defer server.Close()

		client := NewClient(server.URL, "sk_test_123", 5*time.Second)
		_, err := client.CreateCharge(context.Background(), ChargeRequest{Amount: 1, Currency: "SAR"})

		assert.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrGatewayUnavailable))
		assert.Contains(t, err.Error(), "amount below gateway minimum")
	})

	t.Run("unconfigured client fails fast", func(t *testing.T) {
		client := NewClient("", "", time.Second)
		_, err := client.CreateCharge(context.Background(), ChargeRequest{Amount: 100, Currency: "SAR"})

		assert.True(t, errors.Is(err, domain.ErrGatewayUnavailable))
	})
}

func TestFetchCharge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/charges/chg_002", r.URL.Path)

		json.NewEncoder(w).Encode(Charge{
			ID:     "chg_002",
			Status: ChargeStatusPaid,
			Amount: 50000,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_123", 5*time.Second)
	charge, err := client.FetchCharge(context.Background(), "chg_002")

	assert.NoError(t, err)
	assert.Equal(t, ChargeStatusPaid, charge.Status)
	assert.True(t, IsSuccess(charge.Status))
}

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test_secret"
	body := []byte(`{"id":"evt_001","type":"charge.updated","status":"PAID"}`)

	t.Run("valid signature", func(t *testing.T) {
		sig := ComputeSignature(secret, body)
		assert.True(t, VerifySignature(secret, body, sig))
	})

	t.Run("wrong secret", func(t *testing.T) {
		sig := ComputeSignature("whsec_other", body)
		assert.False(t, VerifySignature(secret, body, sig))
	})

	t.Run("tampered body", func(t *testing.T) {
		sig := ComputeSignature(secret, body)
		tampered := []byte(`{"id":"evt_001","type":"charge.updated","status":"FAILED"}`)
		assert.False(t, VerifySignature(secret, tampered, sig))
	})

	t.Run("malformed signature", func(t *testing.T) {
		assert.False(t, VerifySignature(secret, body, "not-hex"))
		assert.False(t, VerifySignature(secret, body, ""))
	})
}

func TestParseEvent(t *testing.T) {
	t.Run("complete event", func(t *testing.T) {
		body := []byte(`{
			"id": "evt_001",
			"type": "charge.updated",
			"charge_id": "chg_001",
			"status": "PAID",
			"amount": 20000,
			"currency": "SAR",
			"reference": {"transaction": "DEP-ABC123DEF456"}
		}`)

		event, err := ParseEvent(body)
		assert.NoError(t, err)
		assert.Equal(t, "evt_001", event.ID)
		assert.Equal(t, "chg_001", event.ChargeID)
		assert.Equal(t, "DEP-ABC123DEF456", event.Reference.Transaction)
	})

	t.Run("missing id rejected", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{"type":"charge.updated"}`))
		assert.ErrorIs(t, err, ErrMalformedEvent)
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		_, err := ParseEvent([]byte(`not json`))
		assert.ErrorIs(t, err, ErrMalformedEvent)
	})
}

func TestChargeStatusPredicates(t *testing.T) {
	assert.True(t, IsSuccess(ChargeStatusPaid))
	assert.True(t, IsSuccess(ChargeStatusCaptured))
	assert.False(t, IsSuccess(ChargeStatusInitiated))
	assert.True(t, IsFailure(ChargeStatusFailed))
	assert.True(t, IsCancelled(ChargeStatusVoided))
	assert.False(t, IsCancelled(ChargeStatusFailed))
}
