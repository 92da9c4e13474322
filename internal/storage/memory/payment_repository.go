package memory

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// paymentRepositoryInMemory — in-memory реализация PaymentRepository.
//
// Инвариант «не более одного live-платежа на заказ» обеспечивается тем,
// что проверка и вставка выполняются под одним мьютексом — аналог
// частичного уникального индекса в PostgreSQL-реализации.
type paymentRepositoryInMemory struct {
	mu    sync.Mutex
	items map[string]domain.Payment
}

// NewPaymentRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewPaymentRepository() *paymentRepositoryInMemory {
	return &paymentRepositoryInMemory{
		items: make(map[string]domain.Payment),
	}
}

// CreateProcessing атомарно занимает платёжный слот заказа.
func (r *paymentRepositoryInMemory) CreateProcessing(payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[payment.ID]; exists {
		return errors.New("payment id already exists")
	}
	for _, existing := range r.items {
		if existing.OrderID == payment.OrderID && existing.Status.Live() {
			return domain.ErrPaymentExists
		}
	}

	payment.Status = domain.PaymentStatusProcessing
	r.items[payment.ID] = payment
	return nil
}

// Settle переводит PROCESSING-запись в терминальный статус.
func (r *paymentRepositoryInMemory) Settle(id string, status domain.PaymentStatus, transactionID string) (domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.items[id]
	if !ok {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	if payment.Status != domain.PaymentStatusProcessing {
		return domain.Payment{}, errors.New("payment is not processing")
	}

	payment.Status = status
	payment.TransactionID = transactionID
	payment.UpdatedAt = time.Now().UTC()
	r.items[id] = payment
	return payment, nil
}

// Get возвращает платёж или ErrPaymentNotFound.
func (r *paymentRepositoryInMemory) Get(id string) (domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.items[id]
	if !ok {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return payment, nil
}

// ListByOrder возвращает все попытки оплаты заказа, старые первыми.
func (r *paymentRepositoryInMemory) ListByOrder(orderID string) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.Payment, 0)
	for _, payment := range r.items {
		if payment.OrderID == orderID {
			result = append(result, payment)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

var _ domain.PaymentRepository = (*paymentRepositoryInMemory)(nil)
