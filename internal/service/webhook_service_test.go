package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/gateway"
	"consulthub-ledger/internal/service"
)

const testWebhookSecret = "whsec_test_secret_value"

func signedEvent(eventID, status, reference string) ([]byte, string) {
	body := []byte(fmt.Sprintf(
		`{"id":%q,"type":"charge.updated","charge_id":"chg_001","status":%q,"amount":20000,"currency":"SAR","reference":{"transaction":%q}}`,
		eventID, status, reference,
	))
	return body, gateway.ComputeSignature(testWebhookSecret, body)
}

func newWebhookService() (*MockWebhookRepo, *MockDepositRepo, service.WebhookService) {
	webhookRepo := new(MockWebhookRepo)
	depositRepo := new(MockDepositRepo)
	depositSvc := service.NewDepositService(depositRepo, new(MockWalletRepo), new(MockEscrowRepo), new(MockPaymentGateway), testLedgerConfig(), "")
	svc := service.NewWebhookService(webhookRepo, depositRepo, depositSvc, testWebhookSecret)
	return webhookRepo, depositRepo, svc
}

func TestWebhookService_Ingest(t *testing.T) {
	ctx := context.Background()

	processingDeposit := func() *domain.Deposit {
		return &domain.Deposit{
			ID: 200, ReferenceNumber: "DEP-AAA", UserID: 1, Amount: 20000,
			Currency: "SAR", Status: domain.DepositStatusProcessing, GatewayChargeID: "chg_001",
		}
	}

	t.Run("paid event completes the deposit once", func(t *testing.T) {
		webhookRepo, depositRepo, svc := newWebhookService()
		body, sig := signedEvent("evt_001", "PAID", "DEP-AAA")

		webhookRepo.On("Record", ctx, mock.MatchedBy(func(l *domain.WebhookLog) bool {
			l.ID = 1
			return l.EventID == "evt_001" && l.SignatureValid && l.Source == "payment_gateway"
		})).Return(false, nil).Once()
		depositRepo.On("GetByReference", ctx, "DEP-AAA").Return(processingDeposit(), nil).Once()
		depositRepo.On("Complete", ctx, int64(200), mock.Anything).Return(nil).Once()
		webhookRepo.On("MarkProcessed", ctx, int64(1)).Return(nil).Once()

		result, err := svc.Ingest(ctx, "payment_gateway", body, sig)
		assert.NoError(t, err)
		assert.False(t, result.Duplicate)
		webhookRepo.AssertExpectations(t)
		depositRepo.AssertExpectations(t)
	})

	t.Run("invalid signature is logged and rejected", func(t *testing.T) {
		webhookRepo, _, svc := newWebhookService()
		body, _ := signedEvent("evt_002", "PAID", "DEP-AAA")

		webhookRepo.On("Record", ctx, mock.MatchedBy(func(l *domain.WebhookLog) bool {
			l.ID = 2
			return !l.SignatureValid
		})).Return(false, nil).Once()
		webhookRepo.On("MarkIgnored", ctx, int64(2), "invalid signature").Return(nil).Once()

		_, err := svc.Ingest(ctx, "payment_gateway", body, "deadbeef")
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
		webhookRepo.AssertExpectations(t)
	})

	t.Run("duplicate of a processed event applies nothing", func(t *testing.T) {
		webhookRepo, depositRepo, svc := newWebhookService()
		body, sig := signedEvent("evt_001", "PAID", "DEP-AAA")

		webhookRepo.On("Record", ctx, mock.MatchedBy(func(l *domain.WebhookLog) bool {
			// Record returns the stored row on conflict.
			l.ID = 1
			l.Status = domain.WebhookStatusProcessed
			l.AttemptCount = 2
			l.IsDuplicate = true
			return true
		})).Return(true, nil).Once()

		result, err := svc.Ingest(ctx, "payment_gateway", body, sig)
		assert.NoError(t, err)
		assert.True(t, result.Duplicate)
		// No deposit lookup, no credit.
		depositRepo.AssertNotCalled(t, "GetByReference", mock.Anything, mock.Anything)
		depositRepo.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("forged redelivery of a known event is rejected", func(t *testing.T) {
		webhookRepo, depositRepo, svc := newWebhookService()
		body, _ := signedEvent("evt_010", "PAID", "DEP-AAA")

		// The stored row carries the FIRST delivery's verdict; it must not
		// vouch for this body.
		webhookRepo.On("Record", ctx, mock.MatchedBy(func(l *domain.WebhookLog) bool {
			l.ID = 10
			l.Status = domain.WebhookStatusFailed
			l.SignatureValid = true
			l.IsDuplicate = true
			return true
		})).Return(true, nil).Once()
		webhookRepo.On("MarkIgnored", ctx, int64(10), "invalid signature").Return(nil).Once()

		_, err := svc.Ingest(ctx, "payment_gateway", body, "deadbeef")
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
		depositRepo.AssertNotCalled(t, "GetByReference", mock.Anything, mock.Anything)
		depositRepo.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
		webhookRepo.AssertExpectations(t)
	})

	t.Run("signed redelivery after a forged first delivery is processed", func(t *testing.T) {
		webhookRepo, depositRepo, svc := newWebhookService()
		body, sig := signedEvent("evt_011", "PAID", "DEP-AAA")

		webhookRepo.On("Record", ctx, mock.MatchedBy(func(l *domain.WebhookLog) bool {
			l.ID = 11
			l.Status = domain.WebhookStatusIgnored
			l.SignatureValid = false
			l.IsDuplicate = true
			return true
		})).Return(true, nil).Once()
		depositRepo.On("GetByReference", ctx, "DEP-AAA").Return(processingDeposit(), nil).Once()
		depositRepo.On("Complete", ctx, int64(200), mock.Anything).Return(nil).Once()
		webhookRepo.On("MarkProcessed", ctx, int64(11)).Return(nil).Once()

		result, err := svc.Ingest(ctx, "payment_gateway", body, sig)
		assert.NoError(t, err)
		assert.True(t, result.Duplicate)
		depositRepo.AssertExpectations(t)
	})

	t.Run("redelivery of a failed event is retried", func(t *testing.T) {
		webhookRepo, depositRepo, svc := newWebhookService()
		body, sig := signedEvent("evt_003", "PAID", "DEP-AAA")

		webhookRepo.On("Record", ctx, mock.MatchedBy(func(l *domain.WebhookLog) bool {
			l.ID = 3
			l.Status = domain.WebhookStatusFailed
			l.IsDuplicate = true
			return true
		})).Return(true, nil).Once()
		depositRepo.On("GetByReference", ctx, "DEP-AAA").Return(processingDeposit(), nil).Once()
		depositRepo.On("Complete", ctx, int64(200), mock.Anything).Return(nil).Once()
		webhookRepo.On("MarkProcessed", ctx, int64(3)).Return(nil).Once()

		result, err := svc.Ingest(ctx, "payment_gateway", body, sig)
		assert.NoError(t, err)
		assert.True(t, result.Duplicate)
		depositRepo.AssertExpectations(t)
	})

	t.Run("unknown deposit marks the log failed", func(t *testing.T) {
		webhookRepo, depositRepo, svc := newWebhookService()
		body, sig := signedEvent("evt_004", "PAID", "DEP-MISSING")

		webhookRepo.On("Record", ctx, mock.MatchedBy(func(l *domain.WebhookLog) bool {
			l.ID = 4
			return true
		})).Return(false, nil).Once()
		depositRepo.On("GetByReference", ctx, "DEP-MISSING").Return(nil, domain.ErrNotFound).Once()
		depositRepo.On("GetByChargeID", ctx, "chg_001").Return(nil, domain.ErrNotFound).Once()
		webhookRepo.On("MarkFailed", ctx, int64(4), "deposit not found for event").Return(nil).Once()

		_, err := svc.Ingest(ctx, "payment_gateway", body, sig)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		webhookRepo.AssertExpectations(t)
	})

	t.Run("non-charge events are ignored", func(t *testing.T) {
		webhookRepo, depositRepo, svc := newWebhookService()
		body := []byte(`{"id":"evt_005","type":"payout.created","status":"PAID"}`)
		sig := gateway.ComputeSignature(testWebhookSecret, body)

		webhookRepo.On("Record", ctx, mock.MatchedBy(func(l *domain.WebhookLog) bool {
			l.ID = 5
			return l.EventType == "payout.created"
		})).Return(false, nil).Once()
		webhookRepo.On("MarkIgnored", ctx, int64(5), "unhandled event type payout.created").Return(nil).Once()

		result, err := svc.Ingest(ctx, "payment_gateway", body, sig)
		assert.NoError(t, err)
		assert.False(t, result.Duplicate)
		depositRepo.AssertNotCalled(t, "GetByReference", mock.Anything, mock.Anything)
	})

	t.Run("unparseable body is rejected", func(t *testing.T) {
		webhookRepo, _, svc := newWebhookService()

		_, err := svc.Ingest(ctx, "payment_gateway", []byte("not json"), "sig")
		assert.Error(t, err)
		webhookRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})
}
