package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SaveWebhookEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	eventID := "evt_1"
	eventType := "charge.succeeded"
	orderID := "ord-1"
	payload := []byte(`{}`)

	t.Run("FirstDelivery", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO payment_webhooks`).
			WithArgs("STRIPE", eventID, eventType, orderID, payload).
			WillReturnRows(sqlmock.NewRows([]string{"id", "processed"}).AddRow(10, false))

		id, processed, err := repo.SaveWebhookEvent(ctx, ProviderStripe, eventID, eventType, orderID, payload)
		assert.NoError(t, err)
		assert.False(t, processed)
		assert.Equal(t, int64(10), id)
	})

	t.Run("RedeliveryOfProcessedEvent", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO payment_webhooks .* ON CONFLICT \(provider, event_id\) DO UPDATE SET attempts = payment_webhooks.attempts \+ 1`).
			WithArgs("STRIPE", eventID, eventType, orderID, payload).
			WillReturnRows(sqlmock.NewRows([]string{"id", "processed"}).AddRow(10, true))

		id, processed, err := repo.SaveWebhookEvent(ctx, ProviderStripe, eventID, eventType, orderID, payload)
		assert.NoError(t, err)
		assert.True(t, processed)
		assert.Equal(t, int64(10), id)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO payment_webhooks`).
			WillReturnError(errors.New("db error"))

		_, _, err := repo.SaveWebhookEvent(ctx, ProviderStripe, eventID, eventType, orderID, payload)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MarkWebhook(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Processed", func(t *testing.T) {
		mock.ExpectExec(`UPDATE payment_webhooks SET processed_at = now\(\)`).
			WithArgs(int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkWebhookProcessed(ctx, 10))
	})

	t.Run("Failed", func(t *testing.T) {
		mock.ExpectExec(`UPDATE payment_webhooks SET process_error = \$2`).
			WithArgs(int64(10), "db down").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkWebhookFailed(ctx, 10, "db down"))
	})

	t.Run("ProcessedDBError", func(t *testing.T) {
		mock.ExpectExec(`UPDATE payment_webhooks`).
			WillReturnError(errors.New("db error"))

		assert.Error(t, repo.MarkWebhookProcessed(ctx, 10))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
