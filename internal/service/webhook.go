package service

import (
	"context"
	"errors"
	"strings"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/gateway"
	"consulthub-ledger/internal/logger"
	"consulthub-ledger/internal/repository"
)

type webhookService struct {
	webhookRepo   repository.WebhookRepository
	depositRepo   repository.DepositRepository
	depositSvc    DepositService
	webhookSecret string
}

func NewWebhookService(
	webhookRepo repository.WebhookRepository,
	depositRepo repository.DepositRepository,
	depositSvc DepositService,
	webhookSecret string,
) WebhookService {
	return &webhookService{
		webhookRepo:   webhookRepo,
		depositRepo:   depositRepo,
		depositSvc:    depositSvc,
		webhookSecret: webhookSecret,
	}
}

// Ingest processes one webhook delivery end to end: verify the signature,
// record the event for audit and dedup, resolve the deposit it refers to
// and apply the charge outcome. Redeliveries of an already-processed event
// are acknowledged without re-applying side effects; redeliveries of an
// event that previously failed are retried.
func (s *webhookService) Ingest(ctx context.Context, source string, body []byte, signature string) (*IngestResult, error) {
	logger.EnterMethod("WebhookService.Ingest", "source", source)

	event, err := gateway.ParseEvent(body)
	if err != nil {
		logger.Warn("Unparseable webhook payload", "source", source, "error", err)
		return nil, err
	}

	// Record overwrites log with the stored row on a redelivery, so the
	// verdict for THIS body must be kept aside and gated on afterwards.
	sigValid := gateway.VerifySignature(s.webhookSecret, body, signature)

	log := &domain.WebhookLog{
		Source:         source,
		EventID:        event.ID,
		EventType:      event.Type,
		Status:         domain.WebhookStatusReceived,
		SignatureValid: sigValid,
		Payload:        string(body),
	}

	duplicate, err := s.webhookRepo.Record(ctx, log)
	if err != nil {
		return nil, err
	}
	result := &IngestResult{LogID: log.ID, Duplicate: duplicate}

	if !sigValid {
		logger.Warn("Webhook signature verification failed", "source", source, "eventID", event.ID)
		if err := s.webhookRepo.MarkIgnored(ctx, log.ID, "invalid signature"); err != nil {
			logger.Error("Failed to mark webhook ignored", "logID", log.ID, "error", err)
		}
		return nil, domain.ErrInvalidSignature
	}

	if duplicate && log.Status == domain.WebhookStatusProcessed {
		logger.Info("Duplicate webhook acknowledged", "source", source, "eventID", event.ID, "attempts", log.AttemptCount)
		return result, nil
	}

	if !strings.HasPrefix(event.Type, "charge.") {
		if err := s.webhookRepo.MarkIgnored(ctx, log.ID, "unhandled event type "+event.Type); err != nil {
			logger.Error("Failed to mark webhook ignored", "logID", log.ID, "error", err)
		}
		return result, nil
	}

	deposit, err := s.resolveDeposit(ctx, event)
	if err != nil {
		if markErr := s.webhookRepo.MarkFailed(ctx, log.ID, "deposit not found for event"); markErr != nil {
			logger.Error("Failed to mark webhook failed", "logID", log.ID, "error", markErr)
		}
		logger.ExitMethodWithError("WebhookService.Ingest", err, "eventID", event.ID)
		return nil, err
	}

	if err := s.depositSvc.ApplyChargeStatus(ctx, deposit, event.Status, event.Message); err != nil {
		if markErr := s.webhookRepo.MarkFailed(ctx, log.ID, err.Error()); markErr != nil {
			logger.Error("Failed to mark webhook failed", "logID", log.ID, "error", markErr)
		}
		logger.ExitMethodWithError("WebhookService.Ingest", err, "eventID", event.ID)
		return nil, err
	}

	if err := s.webhookRepo.MarkProcessed(ctx, log.ID); err != nil {
		return nil, err
	}

	logger.ExitMethod("WebhookService.Ingest", "eventID", event.ID, "reference", event.Reference.Transaction)
	return result, nil
}

// resolveDeposit finds the deposit an event refers to, preferring our own
// reference number over the gateway charge id.
func (s *webhookService) resolveDeposit(ctx context.Context, event *gateway.Event) (*domain.Deposit, error) {
	if event.Reference.Transaction != "" {
		deposit, err := s.depositRepo.GetByReference(ctx, event.Reference.Transaction)
		if err == nil {
			return deposit, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	if event.ChargeID != "" {
		return s.depositRepo.GetByChargeID(ctx, event.ChargeID)
	}
	return nil, domain.ErrNotFound
}
