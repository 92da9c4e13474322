package kafka

// Topics для Kafka
const (
	TopicOrderEvents        = "commerce.order.events"
	TopicPaymentEvents      = "commerce.payment.events"
	TopicRegistrationEvents = "commerce.registration.events"
	TopicDeadLetterQueue    = "commerce.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// TopicForAggregate возвращает topic по типу агрегата outbox-сообщения.
// Неизвестные агрегаты уходят в общий topic заказов.
func TopicForAggregate(aggregateType string) string {
	switch aggregateType {
	case "payment":
		return TopicPaymentEvents
	case "registration":
		return TopicRegistrationEvents
	default:
		return TopicOrderEvents
	}
}
