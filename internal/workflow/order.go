package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/metrics"
)

// OrderWorkflow оформляет заказы: проверяет пользователя и товары,
// считает итог и сохраняет заказ. Идемпотентности на этом уровне нет:
// заказ моделирует намерение checkout, повторный вызов создаёт новый заказ.
type OrderWorkflow struct {
	users    domain.UserRepository
	products domain.ProductRepository
	orders   domain.OrderRepository
	outbox   domain.OutboxRepository
	tax      TaxPolicy
	logger   *log.Entry
	metrics  *metrics.WorkflowMetrics
}

// NewOrderWorkflow создаёт рабочий экземпляр workflow заказов.
func NewOrderWorkflow(
	users domain.UserRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	tax TaxPolicy,
	logger *log.Entry,
) *OrderWorkflow {
	wf := newOrderWorkflow(users, products, orders, outbox, tax, logger)
	wf.metrics = metrics.NewWorkflowMetrics()
	return wf
}

// NewOrderWorkflowWithoutMetrics создаёт workflow без метрик (для тестов).
func NewOrderWorkflowWithoutMetrics(
	users domain.UserRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	tax TaxPolicy,
	logger *log.Entry,
) *OrderWorkflow {
	return newOrderWorkflow(users, products, orders, outbox, tax, logger)
}

func newOrderWorkflow(
	users domain.UserRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	tax TaxPolicy,
	logger *log.Entry,
) *OrderWorkflow {
	if logger == nil {
		logger = log.New().WithField("component", "order-workflow")
	}
	if tax == nil {
		tax = NewZeroTaxPolicy()
	}
	return &OrderWorkflow{
		users:    users,
		products: products,
		orders:   orders,
		outbox:   outbox,
		tax:      tax,
		logger:   logger,
	}
}

// CreateOrder проверяет пользователя и товары, считает итог и сохраняет заказ.
//
// Дубли в productIds не схлопываются: каждый id резолвится отдельно и
// попадает в заказ отдельной позицией.
func (w *OrderWorkflow) CreateOrder(ctx context.Context, userID string, productIDs []string) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if w.metrics != nil {
			w.metrics.RecordWorkflowDuration("order", time.Since(start))
		}
	}()

	if len(productIDs) == 0 {
		return domain.Order{}, domain.ErrProductIDsRequired
	}

	if _, err := w.users.Get(userID); err != nil {
		return domain.Order{}, err
	}

	products := make([]domain.Product, 0, len(productIDs))
	for _, productID := range productIDs {
		product, err := w.products.Get(productID)
		if err != nil {
			return domain.Order{}, err
		}
		products = append(products, product)
	}

	for _, product := range products {
		if product.Discontinued() {
			return domain.Order{}, domain.ErrProductDiscontinued
		}
	}

	taxMinor := w.tax.TaxMinor(products)
	totalMinor := taxMinor
	for _, product := range products {
		totalMinor += product.PriceMinor
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:         uuid.NewString(),
		UserID:     userID,
		Products:   products,
		TaxMinor:   taxMinor,
		TotalMinor: totalMinor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := w.orders.Create(order); err != nil {
		return domain.Order{}, fmt.Errorf("persist order: %w", err)
	}

	if w.metrics != nil {
		w.metrics.RecordOrderCreated()
	}
	w.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"user_id":     userID,
		"total_minor": totalMinor,
	}).Info("order created")

	emitEvent(w.outbox, w.metrics, w.logger, "order", order.ID, eventOrderCreated, map[string]interface{}{
		"order_id":    order.ID,
		"user_id":     userID,
		"product_ids": order.ProductIDs(),
		"tax_minor":   taxMinor,
		"total_minor": totalMinor,
	})

	return order, nil
}
