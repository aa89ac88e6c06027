package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"checkout-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetOrderByID(ctx context.Context, id string) (*Order, error)

	// MarkPaid flips the order to paid only if it is still unpaid. It reports
	// whether this call performed the transition.
	MarkPaid(
		ctx context.Context,
		id string,
		paidAt time.Time,
		result PaymentResult,
	) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	const q = `
		SELECT id, user_id, user_email, items, shipping_address,
			items_price, tax_price, shipping_price, total_price, currency,
			payment_method, is_paid, paid_at, payment_result,
			created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var (
		o             Order
		itemsRaw      []byte
		addressRaw    []byte
		method        string
		paidAt        sql.NullTime
		paymentResult []byte
	)

	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&o.ID, &o.UserID, &o.UserEmail, &itemsRaw, &addressRaw,
		&o.ItemsPrice, &o.TaxPrice, &o.ShippingPrice, &o.TotalPrice, &o.Currency,
		&method, &o.IsPaid, &paidAt, &paymentResult,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	// Unknown values are kept as-is; dispatch treats them as "no payment action".
	o.PaymentMethod = PaymentMethod(method)

	if len(itemsRaw) > 0 {
		if err := json.Unmarshal(itemsRaw, &o.Items); err != nil {
			return nil, fmt.Errorf("decode order items: %w", err)
		}
	}
	if len(addressRaw) > 0 {
		if err := json.Unmarshal(addressRaw, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("decode shipping address: %w", err)
		}
	}
	if paidAt.Valid {
		t := paidAt.Time
		o.PaidAt = &t
	}
	if len(paymentResult) > 0 {
		var pr PaymentResult
		if err := json.Unmarshal(paymentResult, &pr); err != nil {
			return nil, fmt.Errorf("decode payment result: %w", err)
		}
		o.PaymentResult = &pr
	}

	return &o, nil
}

func (r *repository) MarkPaid(
	ctx context.Context,
	id string,
	paidAt time.Time,
	result PaymentResult,
) (bool, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "MarkPaid"),
		zap.String("order_id", id),
	)

	payload, err := json.Marshal(result)
	if err != nil {
		return false, fmt.Errorf("encode payment result: %w", err)
	}

	// Conditional update: concurrent confirmations race on the row lock and
	// only the first one sees is_paid = FALSE.
	const q = `
		UPDATE orders
		SET is_paid = TRUE,
			paid_at = $2,
			payment_result = $3,
			updated_at = NOW()
		WHERE id = $1 AND is_paid = FALSE
	`

	res, err := r.db.ExecContext(ctx, q, id, paidAt, payload)
	if err != nil {
		log.Error("failed to mark order paid", zap.Error(err))
		return false, fmt.Errorf("mark order paid: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}

	log.Debug("mark paid executed", zap.Int64("rows_affected", rows))
	return rows == 1, nil
}
