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

const defaultChargeTimeout = 10 * time.Second

// PaymentWorkflow проводит оплату заказа через внешний шлюз.
//
// Идемпотентность обеспечивается хранилищем: слот заказа занимается
// PROCESSING-записью до обращения к шлюзу, поэтому два конкурентных
// вызова не могут списать деньги дважды — второй получает конфликт
// ещё до charge.
type PaymentWorkflow struct {
	users    domain.UserRepository
	orders   domain.OrderRepository
	payments domain.PaymentRepository
	gateway  domain.CardGateway
	outbox   domain.OutboxRepository
	logger   *log.Entry
	metrics  *metrics.WorkflowMetrics

	chargeTimeout time.Duration
}

// NewPaymentWorkflow создаёт рабочий экземпляр workflow платежей.
func NewPaymentWorkflow(
	users domain.UserRepository,
	orders domain.OrderRepository,
	payments domain.PaymentRepository,
	gateway domain.CardGateway,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *PaymentWorkflow {
	wf := newPaymentWorkflow(users, orders, payments, gateway, outbox, logger)
	wf.metrics = metrics.NewWorkflowMetrics()
	return wf
}

// NewPaymentWorkflowWithoutMetrics создаёт workflow без метрик (для тестов).
func NewPaymentWorkflowWithoutMetrics(
	users domain.UserRepository,
	orders domain.OrderRepository,
	payments domain.PaymentRepository,
	gateway domain.CardGateway,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *PaymentWorkflow {
	return newPaymentWorkflow(users, orders, payments, gateway, outbox, logger)
}

func newPaymentWorkflow(
	users domain.UserRepository,
	orders domain.OrderRepository,
	payments domain.PaymentRepository,
	gateway domain.CardGateway,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *PaymentWorkflow {
	if logger == nil {
		logger = log.New().WithField("component", "payment-workflow")
	}
	return &PaymentWorkflow{
		users:         users,
		orders:        orders,
		payments:      payments,
		gateway:       gateway,
		outbox:        outbox,
		logger:        logger,
		chargeTimeout: defaultChargeTimeout,
	}
}

// SetChargeTimeout переопределяет таймаут обращения к шлюзу.
func (w *PaymentWorkflow) SetChargeTimeout(timeout time.Duration) {
	if timeout > 0 {
		w.chargeTimeout = timeout
	}
}

// CreatePayment проводит одну попытку оплаты заказа.
//
// Последовательность: проверки → занять слот PROCESSING-записью →
// charge у шлюза → перевести запись в PAID или DECLINED. Отказ шлюза
// (включая таймаут) оставляет durable DECLINED-запись и завершает вызов
// ErrPaymentDeclined; DECLINED слот не удерживает, повторная попытка
// оплаты возможна.
func (w *PaymentWorkflow) CreatePayment(
	ctx context.Context,
	userID, orderID, methodToken string,
	expectedAmountMinor int64,
) (domain.Payment, error) {
	start := time.Now()
	defer func() {
		if w.metrics != nil {
			w.metrics.RecordWorkflowDuration("payment", time.Since(start))
		}
	}()

	if _, err := w.users.Get(userID); err != nil {
		return domain.Payment{}, err
	}

	order, err := w.orders.GetForUser(orderID, userID)
	if err != nil {
		return domain.Payment{}, err
	}

	// Ранняя проверка слота: повтор по уже оплаченному заказу обязан
	// видеть конфликт независимо от присланной суммы и токена.
	// Авторитетна всё равно атомарная CreateProcessing ниже.
	existing, err := w.payments.ListByOrder(order.ID)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("list payments for order: %w", err)
	}
	for _, attempt := range existing {
		if attempt.Status.Live() {
			if w.metrics != nil {
				w.metrics.RecordPaymentConflict()
			}
			return domain.Payment{}, domain.ErrPaymentExists
		}
	}

	// Защита от устаревшей клиентской цены.
	if expectedAmountMinor != order.TotalMinor {
		return domain.Payment{}, domain.ErrAmountMismatch
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		UserID:      userID,
		AmountMinor: order.TotalMinor,
		Status:      domain.PaymentStatusProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := w.payments.CreateProcessing(payment); err != nil {
		if errors.Is(err, domain.ErrPaymentExists) {
			if w.metrics != nil {
				w.metrics.RecordPaymentConflict()
			}
			return domain.Payment{}, domain.ErrPaymentExists
		}
		return domain.Payment{}, fmt.Errorf("claim payment slot: %w", err)
	}

	chargeCtx, cancel := context.WithTimeout(ctx, w.chargeTimeout)
	defer cancel()

	chargeStart := time.Now()
	result, chargeErr := w.gateway.Charge(chargeCtx, order.TotalMinor, methodToken)
	if w.metrics != nil {
		w.metrics.RecordChargeDuration(time.Since(chargeStart))
	}

	if chargeErr != nil {
		// Исход неизвестен — PROCESSING-запись нельзя бросить подвисшей.
		// Фиксируем DECLINED, слот освобождается для повторной попытки.
		declined, settleErr := w.settleDeclined(payment, "")
		if settleErr != nil {
			return domain.Payment{}, settleErr
		}
		if errors.Is(chargeErr, context.DeadlineExceeded) {
			w.logger.WithError(chargeErr).WithField("order_id", order.ID).Warn("gateway charge timed out")
			w.emitDeclined(declined)
			return domain.Payment{}, domain.ErrPaymentDeclined
		}
		return domain.Payment{}, fmt.Errorf("gateway charge: %w", chargeErr)
	}

	if !result.Success {
		declined, settleErr := w.settleDeclined(payment, result.TransactionID)
		if settleErr != nil {
			return domain.Payment{}, settleErr
		}
		w.logger.WithFields(log.Fields{
			"order_id":   order.ID,
			"payment_id": declined.ID,
		}).Warn("gateway declined charge")
		w.emitDeclined(declined)
		return domain.Payment{}, domain.ErrPaymentDeclined
	}

	transactionID := result.TransactionID
	if transactionID == "" {
		transactionID = uuid.NewString()
	}
	paid, err := w.payments.Settle(payment.ID, domain.PaymentStatusPaid, transactionID)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("settle paid payment: %w", err)
	}

	if w.metrics != nil {
		w.metrics.RecordPaymentSettled(string(domain.PaymentStatusPaid))
	}
	w.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"payment_id":   paid.ID,
		"amount_minor": paid.AmountMinor,
	}).Info("payment settled")

	emitEvent(w.outbox, w.metrics, w.logger, "payment", paid.ID, eventPaymentSettled, map[string]interface{}{
		"payment_id":     paid.ID,
		"order_id":       paid.OrderID,
		"user_id":        paid.UserID,
		"amount_minor":   paid.AmountMinor,
		"transaction_id": paid.TransactionID,
	})

	return paid, nil
}

// CreatePaymentToken выдаёт клиентский токенизационный хэндл шлюза.
// Бизнес-инвариантов нет: stateless-проброс.
func (w *PaymentWorkflow) CreatePaymentToken(ctx context.Context) (domain.PaymentToken, error) {
	token, err := w.gateway.Tokenize(ctx)
	if err != nil {
		return domain.PaymentToken{}, fmt.Errorf("gateway tokenize: %w", err)
	}
	return token, nil
}

func (w *PaymentWorkflow) settleDeclined(payment domain.Payment, transactionID string) (domain.Payment, error) {
	if transactionID == "" {
		transactionID = uuid.NewString()
	}
	declined, err := w.payments.Settle(payment.ID, domain.PaymentStatusDeclined, transactionID)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("settle declined payment: %w", err)
	}
	if w.metrics != nil {
		w.metrics.RecordPaymentSettled(string(domain.PaymentStatusDeclined))
	}
	return declined, nil
}

func (w *PaymentWorkflow) emitDeclined(payment domain.Payment) {
	emitEvent(w.outbox, w.metrics, w.logger, "payment", payment.ID, eventPaymentDeclined, map[string]interface{}{
		"payment_id":     payment.ID,
		"order_id":       payment.OrderID,
		"user_id":        payment.UserID,
		"amount_minor":   payment.AmountMinor,
		"transaction_id": payment.TransactionID,
	})
}
