package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

type registrationRepository struct {
	db *sql.DB
}

// NewRegistrationRepository создаёт PostgreSQL-реализацию RegistrationRepository.
//
// Проверки дубля и квоты выполняются в одной транзакции под блокировкой
// строки заказа (SELECT ... FOR UPDATE), поэтому конкурентные вызовы по
// одному заказу сериализуются и не могут вдвоём пройти проверку квоты.
// Уникальный индекс registrations_domain_unique страхует дубль домена
// и на уровне схемы.
func NewRegistrationRepository(store *Store) domain.RegistrationRepository {
	return &registrationRepository{db: store.DB()}
}

func (r *registrationRepository) Create(registration domain.Registration, maxPerOrder int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var lockedOrderID string
	if err = tx.QueryRowContext(ctx, `
		SELECT id FROM orders WHERE id = $1 FOR UPDATE
	`, registration.OrderID).Scan(&lockedOrderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("lock order row: %w", err)
	}

	// Порядок отказов фиксирован: сначала дубль домена, затем квота.
	var duplicate bool
	var existing int32
	if err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE domain = $4) > 0, COUNT(*)
		FROM registrations
		WHERE user_id = $1 AND product_id = $2 AND order_id = $3
	`,
		registration.UserID, registration.ProductID, registration.OrderID,
		registration.Domain,
	).Scan(&duplicate, &existing); err != nil {
		return fmt.Errorf("count registrations: %w", err)
	}

	if duplicate {
		err = domain.ErrRegistrationExists
		return err
	}
	if maxPerOrder == 0 || existing >= maxPerOrder {
		err = domain.ErrQuotaExceeded
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO registrations (
			id, user_id, product_id, order_id, domain, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		registration.ID, registration.UserID, registration.ProductID,
		registration.OrderID, registration.Domain,
		registration.CreatedAt, registration.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			err = domain.ErrRegistrationExists
			return err
		}
		return fmt.Errorf("insert registration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create registration: %w", err)
	}

	return nil
}

func (r *registrationRepository) Get(id string) (domain.Registration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var registration domain.Registration

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, product_id, order_id, domain, created_at, updated_at
		FROM registrations
		WHERE id = $1
	`, id).Scan(
		&registration.ID, &registration.UserID, &registration.ProductID,
		&registration.OrderID, &registration.Domain,
		&registration.CreatedAt, &registration.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Registration{}, domain.ErrRegistrationNotFound
		}
		return domain.Registration{}, fmt.Errorf("select registration: %w", err)
	}

	return registration, nil
}

func (r *registrationRepository) ListForOrder(userID, productID, orderID string) ([]domain.Registration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, order_id, domain, created_at, updated_at
		FROM registrations
		WHERE user_id = $1 AND product_id = $2 AND order_id = $3
		ORDER BY created_at, id
	`, userID, productID, orderID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]domain.Registration, 0)
	for rows.Next() {
		var registration domain.Registration
		if err := rows.Scan(
			&registration.ID, &registration.UserID, &registration.ProductID,
			&registration.OrderID, &registration.Domain,
			&registration.CreatedAt, &registration.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan registration row: %w", err)
		}
		registrations = append(registrations, registration)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registration rows: %w", err)
	}

	return registrations, nil
}

var _ domain.RegistrationRepository = (*registrationRepository)(nil)
