package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/repository/postgres"
)

func TestWebhookRepository_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewWebhookRepository(db)
	ctx := context.Background()

	t.Run("FirstDelivery", func(t *testing.T) {
		log := &domain.WebhookLog{
			Source:         "payment_gateway",
			EventID:        "evt_1",
			EventType:      "charge.updated",
			SignatureValid: true,
			Payload:        `{"id":"evt_1"}`,
		}

		mock.ExpectQuery("INSERT INTO webhook_logs").
			WithArgs(log.Source, log.EventID, log.EventType, domain.WebhookStatusReceived,
				true, log.Payload, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(5, time.Now()))

		duplicate, err := repo.Record(ctx, log)
		assert.NoError(t, err)
		assert.False(t, duplicate)
		assert.Equal(t, int64(5), log.ID)
		assert.Equal(t, int32(1), log.AttemptCount)
		assert.Equal(t, domain.WebhookStatusReceived, log.Status)
	})

	t.Run("Redelivery", func(t *testing.T) {
		log := &domain.WebhookLog{
			Source:         "payment_gateway",
			EventID:        "evt_1",
			EventType:      "charge.updated",
			SignatureValid: true,
			Payload:        `{"id":"evt_1"}`,
		}

		// The insert hits the (source, event_id) conflict and returns no row.
		mock.ExpectQuery("INSERT INTO webhook_logs").
			WithArgs(log.Source, log.EventID, log.EventType, domain.WebhookStatusReceived,
				true, log.Payload, sqlmock.AnyArg()).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("UPDATE webhook_logs").
			WithArgs(log.Source, log.EventID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "source", "event_id", "event_type", "status", "attempt_count",
				"is_duplicate", "signature_valid", "payload", "processing_note", "created_at", "processed_at",
			}).AddRow(5, "payment_gateway", "evt_1", "charge.updated", domain.WebhookStatusProcessed,
				2, true, true, `{"id":"evt_1"}`, "", time.Now(), time.Now()))

		duplicate, err := repo.Record(ctx, log)
		assert.NoError(t, err)
		assert.True(t, duplicate)
		assert.Equal(t, int64(5), log.ID)
		assert.Equal(t, int32(2), log.AttemptCount)
		assert.Equal(t, domain.WebhookStatusProcessed, log.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWebhookRepository_MarkProcessed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewWebhookRepository(db)

	mock.ExpectExec("UPDATE webhook_logs SET status =").
		WithArgs(domain.WebhookStatusProcessed, sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkProcessed(context.Background(), 5)
	assert.NoError(t, err)
}
