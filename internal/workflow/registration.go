package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/metrics"
)

// RegistrationWorkflow выдаёт доменные регистрации в пределах квоты товара.
//
// Обе проверки — дубль домена и квота — атомарно выполняет хранилище
// (RegistrationRepository.Create), иначе два конкурентных вызова вместе
// превысили бы maxRegistrationsPerOrder.
type RegistrationWorkflow struct {
	users         domain.UserRepository
	products      domain.ProductRepository
	orders        domain.OrderRepository
	registrations domain.RegistrationRepository
	outbox        domain.OutboxRepository
	logger        *log.Entry
	metrics       *metrics.WorkflowMetrics
}

// NewRegistrationWorkflow создаёт рабочий экземпляр workflow регистраций.
func NewRegistrationWorkflow(
	users domain.UserRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	registrations domain.RegistrationRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *RegistrationWorkflow {
	wf := newRegistrationWorkflow(users, products, orders, registrations, outbox, logger)
	wf.metrics = metrics.NewWorkflowMetrics()
	return wf
}

// NewRegistrationWorkflowWithoutMetrics создаёт workflow без метрик (для тестов).
func NewRegistrationWorkflowWithoutMetrics(
	users domain.UserRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	registrations domain.RegistrationRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *RegistrationWorkflow {
	return newRegistrationWorkflow(users, products, orders, registrations, outbox, logger)
}

func newRegistrationWorkflow(
	users domain.UserRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	registrations domain.RegistrationRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *RegistrationWorkflow {
	if logger == nil {
		logger = log.New().WithField("component", "registration-workflow")
	}
	return &RegistrationWorkflow{
		users:         users,
		products:      products,
		orders:        orders,
		registrations: registrations,
		outbox:        outbox,
		logger:        logger,
	}
}

// CreateRegistration регистрирует домен в счёт квоты товара по заказу.
//
// Принимает уже нормализованный домен (см. DomainFromOrigin): парсинг
// Origin-заголовка — забота транспорта. Порядок отказов фиксирован:
// дубль домена раньше квоты.
func (w *RegistrationWorkflow) CreateRegistration(
	ctx context.Context,
	userID, productID, orderID, domainName string,
) (domain.Registration, error) {
	start := time.Now()
	defer func() {
		if w.metrics != nil {
			w.metrics.RecordWorkflowDuration("registration", time.Since(start))
		}
	}()

	if domainName == "" {
		return domain.Registration{}, domain.ErrDomainRequired
	}

	if _, err := w.users.Get(userID); err != nil {
		return domain.Registration{}, err
	}
	product, err := w.products.Get(productID)
	if err != nil {
		return domain.Registration{}, err
	}
	if _, err := w.orders.Get(orderID); err != nil {
		return domain.Registration{}, err
	}

	now := time.Now().UTC()
	registration := domain.Registration{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		OrderID:   orderID,
		Domain:    domainName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := w.registrations.Create(registration, product.MaxRegistrationsPerOrder); err != nil {
		switch {
		case errors.Is(err, domain.ErrRegistrationExists):
			if w.metrics != nil {
				w.metrics.RecordRegistrationReject("conflict")
			}
			return domain.Registration{}, domain.ErrRegistrationExists
		case errors.Is(err, domain.ErrQuotaExceeded):
			if w.metrics != nil {
				w.metrics.RecordRegistrationReject("quota")
			}
			return domain.Registration{}, domain.ErrQuotaExceeded
		default:
			return domain.Registration{}, fmt.Errorf("persist registration: %w", err)
		}
	}

	if w.metrics != nil {
		w.metrics.RecordRegistrationCreated()
	}
	w.logger.WithFields(log.Fields{
		"registration_id": registration.ID,
		"order_id":        orderID,
		"domain":          domainName,
	}).Info("registration created")

	emitEvent(w.outbox, w.metrics, w.logger, "registration", registration.ID, eventRegistrationCreated, map[string]interface{}{
		"registration_id": registration.ID,
		"user_id":         userID,
		"product_id":      productID,
		"order_id":        orderID,
		"domain":          domainName,
	})

	return registration, nil
}
