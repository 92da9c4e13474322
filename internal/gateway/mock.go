package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// MockGateway — конфигурируемая заглушка CardGateway для тестов и
// локальной разработки.
type MockGateway struct {
	mu sync.Mutex

	// ChargeSuccess определяет исход charge по умолчанию.
	ChargeSuccess bool
	// ChargeErr возвращается вместо результата, если задан.
	ChargeErr error
	// TokenizeErr возвращается из Tokenize, если задан.
	TokenizeErr error
	// Блокирующий hook: позволяет тестам симулировать медленный шлюз.
	ChargeDelay func(ctx context.Context) error

	ChargeCalls   int
	TokenizeCalls int
	LastAmount    int64
	LastToken     string
}

// NewMockGateway возвращает mock с успешным сценарием по умолчанию.
func NewMockGateway() *MockGateway {
	return &MockGateway{ChargeSuccess: true}
}

// Charge возвращает заранее настроенный результат и считает вызовы.
func (m *MockGateway) Charge(ctx context.Context, amountMinor int64, methodToken string) (domain.ChargeResult, error) {
	m.mu.Lock()
	m.ChargeCalls++
	m.LastAmount = amountMinor
	m.LastToken = methodToken
	delay := m.ChargeDelay
	chargeErr := m.ChargeErr
	success := m.ChargeSuccess
	m.mu.Unlock()

	if delay != nil {
		if err := delay(ctx); err != nil {
			return domain.ChargeResult{}, err
		}
	}
	if chargeErr != nil {
		return domain.ChargeResult{}, chargeErr
	}

	return domain.ChargeResult{
		Success:       success,
		TransactionID: fmt.Sprintf("mock-txn-%s", uuid.NewString()),
	}, nil
}

// Tokenize возвращает случайный токен и считает вызовы.
func (m *MockGateway) Tokenize(ctx context.Context) (domain.PaymentToken, error) {
	m.mu.Lock()
	m.TokenizeCalls++
	tokenizeErr := m.TokenizeErr
	m.mu.Unlock()

	if tokenizeErr != nil {
		return domain.PaymentToken{}, tokenizeErr
	}
	return domain.PaymentToken{Token: fmt.Sprintf("mock-tok-%s", uuid.NewString())}, nil
}

var _ domain.CardGateway = (*MockGateway)(nil)
