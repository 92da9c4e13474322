package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository создаёт PostgreSQL-реализацию PaymentRepository.
//
// Инвариант «не более одного live-платежа на заказ» обеспечивает
// частичный уникальный индекс payments_one_live_per_order: вставка
// второй PAID/PROCESSING-записи по заказу падает с 23505, гонки на
// уровне приложения невозможны в принципе.
func NewPaymentRepository(store *Store) domain.PaymentRepository {
	return &paymentRepository{db: store.DB()}
}

func (r *paymentRepository) CreateProcessing(payment domain.Payment) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (
			id, order_id, user_id, transaction_id, amount_minor, status,
			created_at, updated_at
		) VALUES ($1,$2,$3,'',$4,$5,$6,$7)
	`,
		payment.ID, payment.OrderID, payment.UserID, payment.AmountMinor,
		string(domain.PaymentStatusProcessing), payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPaymentExists
		}
		return fmt.Errorf("insert processing payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) Settle(id string, status domain.PaymentStatus, transactionID string) (domain.Payment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var payment domain.Payment
	var statusRaw string

	err := r.db.QueryRowContext(ctx, `
		UPDATE payments
		SET status = $2,
		    transaction_id = $3,
		    updated_at = $4
		WHERE id = $1
		  AND status = $5
		RETURNING id, order_id, user_id, transaction_id, amount_minor, status,
		          created_at, updated_at
	`,
		id, string(status), transactionID, time.Now().UTC(),
		string(domain.PaymentStatusProcessing),
	).Scan(
		&payment.ID, &payment.OrderID, &payment.UserID, &payment.TransactionID,
		&payment.AmountMinor, &statusRaw, &payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := r.Get(id); errors.Is(getErr, domain.ErrPaymentNotFound) {
				return domain.Payment{}, domain.ErrPaymentNotFound
			}
			return domain.Payment{}, errors.New("payment is not processing")
		}
		return domain.Payment{}, fmt.Errorf("settle payment: %w", err)
	}
	payment.Status = domain.PaymentStatus(statusRaw)

	return payment, nil
}

func (r *paymentRepository) Get(id string) (domain.Payment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var payment domain.Payment
	var statusRaw string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, user_id, transaction_id, amount_minor, status,
		       created_at, updated_at
		FROM payments
		WHERE id = $1
	`, id).Scan(
		&payment.ID, &payment.OrderID, &payment.UserID, &payment.TransactionID,
		&payment.AmountMinor, &statusRaw, &payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Payment{}, domain.ErrPaymentNotFound
		}
		return domain.Payment{}, fmt.Errorf("select payment: %w", err)
	}
	payment.Status = domain.PaymentStatus(statusRaw)

	return payment, nil
}

func (r *paymentRepository) ListByOrder(orderID string) ([]domain.Payment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, user_id, transaction_id, amount_minor, status,
		       created_at, updated_at
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		var payment domain.Payment
		var statusRaw string
		if err := rows.Scan(
			&payment.ID, &payment.OrderID, &payment.UserID, &payment.TransactionID,
			&payment.AmountMinor, &statusRaw, &payment.CreatedAt, &payment.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payment.Status = domain.PaymentStatus(statusRaw)
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment rows: %w", err)
	}

	return payments, nil
}

var _ domain.PaymentRepository = (*paymentRepository)(nil)
