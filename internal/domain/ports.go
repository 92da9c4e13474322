package domain

import (
	"context"
	"time"
)

// ChargeResult — исход обращения к платёжному шлюзу.
type ChargeResult struct {
	// Success — шлюз подтвердил списание.
	Success bool
	// TransactionID — внешняя ссылка на транзакцию; шлюз возвращает её
	// и для отклонённых списаний.
	TransactionID string
}

// CardGateway описывает внешний платёжный шлюз.
type CardGateway interface {
	// Charge пытается списать сумму по клиентскому токену платёжного
	// метода. Отказ шлюза — это (ChargeResult{Success: false}, nil);
	// ошибка возвращается только при инфраструктурном сбое. Таймаут
	// контекста вызывающий трактует как отказ.
	Charge(ctx context.Context, amountMinor int64, methodToken string) (ChargeResult, error)
	// Tokenize выдаёт клиентский токенизационный хэндл.
	Tokenize(ctx context.Context) (PaymentToken, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
