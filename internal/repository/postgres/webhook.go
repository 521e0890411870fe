package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/logger"
	"consulthub-ledger/internal/repository"
)

type webhookRepository struct {
	db *sql.DB
}

func NewWebhookRepository(db *sql.DB) repository.WebhookRepository {
	return &webhookRepository{db: db}
}

const webhookColumns = `id, source, event_id, event_type, status, attempt_count,
	is_duplicate, signature_valid, payload, COALESCE(processing_note, ''), created_at, processed_at`

func scanWebhookLog(scanner interface {
	Scan(dest ...any) error
}) (*domain.WebhookLog, error) {
	l := &domain.WebhookLog{}
	err := scanner.Scan(
		&l.ID, &l.Source, &l.EventID, &l.EventType, &l.Status, &l.AttemptCount,
		&l.IsDuplicate, &l.SignatureValid, &l.Payload, &l.ProcessingNote,
		&l.CreatedAt, &l.ProcessedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Record inserts the event row, or detects redelivery through the unique
// (source, event_id) constraint. The insert-or-conflict is a single
// statement, so two concurrent deliveries of the same event cannot both
// win: exactly one insert succeeds and the other takes the duplicate path.
func (r *webhookRepository) Record(ctx context.Context, log *domain.WebhookLog) (bool, error) {
	logger.EnterMethod("webhookRepository.Record", "source", log.Source, "eventID", log.EventID)

	now := time.Now()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO webhook_logs (
			source, event_id, event_type, status, attempt_count, is_duplicate,
			signature_valid, payload, created_at
		) VALUES ($1, $2, $3, $4, 1, false, $5, $6, $7)
		ON CONFLICT (source, event_id) DO NOTHING
		RETURNING id, created_at`,
		log.Source, log.EventID, log.EventType, domain.WebhookStatusReceived,
		log.SignatureValid, log.Payload, now,
	).Scan(&log.ID, &log.CreatedAt)

	if err == nil {
		log.Status = domain.WebhookStatusReceived
		log.AttemptCount = 1
		logger.ExitMethod("webhookRepository.Record", "logID", log.ID, "duplicate", false)
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.ExitMethodWithError("webhookRepository.Record", err, "eventID", log.EventID)
		return false, fmt.Errorf("record webhook event %s/%s: %w", log.Source, log.EventID, err)
	}

	// Conflict: the event was seen before. Bump the delivery counter on the
	// stored row and hand it back so the caller can skip side effects.
	existing, err := scanWebhookLog(r.db.QueryRowContext(ctx,
		`UPDATE webhook_logs
		 SET attempt_count = attempt_count + 1, is_duplicate = true
		 WHERE source = $1 AND event_id = $2
		 RETURNING `+webhookColumns,
		log.Source, log.EventID,
	))
	if err != nil {
		logger.ExitMethodWithError("webhookRepository.Record", err, "eventID", log.EventID)
		return false, fmt.Errorf("mark webhook event %s/%s duplicate: %w", log.Source, log.EventID, err)
	}

	*log = *existing
	logger.ExitMethod("webhookRepository.Record", "logID", log.ID, "duplicate", true, "attempts", log.AttemptCount)
	return true, nil
}

func (r *webhookRepository) MarkProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE webhook_logs SET status = $1, processed_at = $2 WHERE id = $3`,
		domain.WebhookStatusProcessed, time.Now(), id,
	)
	return err
}

func (r *webhookRepository) MarkFailed(ctx context.Context, id int64, note string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE webhook_logs SET status = $1, processing_note = $2, processed_at = $3 WHERE id = $4`,
		domain.WebhookStatusFailed, note, time.Now(), id,
	)
	return err
}

func (r *webhookRepository) MarkIgnored(ctx context.Context, id int64, note string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE webhook_logs SET status = $1, processing_note = $2, processed_at = $3 WHERE id = $4`,
		domain.WebhookStatusIgnored, note, time.Now(), id,
	)
	return err
}
