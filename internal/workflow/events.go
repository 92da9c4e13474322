package workflow

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/metrics"
)

// Типы событий, которые workflow кладут в transactional outbox.
const (
	eventOrderCreated        = "OrderCreated"
	eventPaymentSettled      = "PaymentSettled"
	eventPaymentDeclined     = "PaymentDeclined"
	eventRegistrationCreated = "RegistrationCreated"
)

// emitEvent сериализует payload и кладёт событие в outbox. Ошибка
// постановки не прерывает workflow: запись доменной сущности уже
// состоялась, событие фиксируется best-effort.
func emitEvent(
	outbox domain.OutboxRepository,
	workflowMetrics *metrics.WorkflowMetrics,
	logger *log.Entry,
	aggregateType, aggregateID, eventType string,
	payload map[string]interface{},
) {
	if outbox == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	payload["ts"] = time.Now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(payload)
	if err != nil {
		logger.WithError(err).WithFields(log.Fields{
			"aggregate_id": aggregateID,
			"event":        eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       data,
	}
	if _, err := outbox.Enqueue(msg); err != nil {
		logger.WithError(err).WithFields(log.Fields{
			"aggregate_id": aggregateID,
			"event":        eventType,
		}).Error("enqueue event failed")
		return
	}
	if workflowMetrics != nil {
		workflowMetrics.RecordOutboxEvent()
	}
}
