package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/gateway"
	"github.com/vladislavdragonenkov/commerce/internal/workflow"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Empty(t, cfg.PostgresDSN)
}

func TestNewDependencies_InMemory(t *testing.T) {
	deps, err := NewDependencies(context.Background(), Config{}, nil)
	require.NoError(t, err)
	defer deps.Close()

	assert.Nil(t, deps.Store)
	assert.NotNil(t, deps.Orders)
	assert.NotNil(t, deps.Payments)
	assert.NotNil(t, deps.Registrations)
	assert.NotNil(t, deps.OutboxRepo)

	_, ok := deps.Gateway.(*gateway.MockGateway)
	assert.True(t, ok, "empty gateway url must fall back to mock gateway")
}

// Сквозной сценарий: заказ → оплата → регистрация, с проверкой
// идемпотентности оплаты и квоты регистраций.
func TestEndToEndCheckoutFlow(t *testing.T) {
	deps, err := NewDependencies(context.Background(), Config{}, nil)
	require.NoError(t, err)
	defer deps.Close()

	users := deps.Users.(interface{ Put(domain.User) })
	products := deps.Products.(interface{ Put(domain.Product) })

	now := time.Now().UTC()
	users.Put(domain.User{ID: "user-1", Email: "buyer@example.com", CreatedAt: now})
	products.Put(domain.Product{
		ID:                       "product-1",
		Name:                     "basic-license",
		PriceMinor:               400,
		Status:                   domain.ProductStatusActive,
		MaxRegistrationsPerOrder: 1,
		CreatedAt:                now,
	})

	orderWF := workflow.NewOrderWorkflowWithoutMetrics(deps.Users, deps.Products, deps.Orders, deps.OutboxRepo, nil, nil)
	paymentWF := workflow.NewPaymentWorkflowWithoutMetrics(deps.Users, deps.Orders, deps.Payments, deps.Gateway, deps.OutboxRepo, nil)
	registrationWF := workflow.NewRegistrationWorkflowWithoutMetrics(deps.Users, deps.Products, deps.Orders, deps.Registrations, deps.OutboxRepo, nil)

	ctx := context.Background()

	order, err := orderWF.CreateOrder(ctx, "user-1", []string{"product-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(400), order.TotalMinor)

	payment, err := paymentWF.CreatePayment(ctx, "user-1", order.ID, "tok-1", 400)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, payment.Status)

	// Повторная оплата — конфликт независимо от суммы.
	_, err = paymentWF.CreatePayment(ctx, "user-1", order.ID, "tok-2", 999)
	assert.True(t, errors.Is(err, domain.ErrPaymentExists))

	registration, err := registrationWF.CreateRegistration(ctx, "user-1", "product-1", order.ID, "lol.com")
	require.NoError(t, err)
	assert.Equal(t, "lol.com", registration.Domain)

	_, err = registrationWF.CreateRegistration(ctx, "user-1", "product-1", order.ID, "lol.com")
	assert.True(t, errors.Is(err, domain.ErrRegistrationExists))

	_, err = registrationWF.CreateRegistration(ctx, "user-1", "product-1", order.ID, "rofl.com")
	assert.True(t, errors.Is(err, domain.ErrQuotaExceeded))

	// События всех трёх workflow дошли до outbox.
	outboxRepo := deps.OutboxRepo.(interface{ AllPending() []domain.OutboxMessage })
	events := outboxRepo.AllPending()
	assert.Len(t, events, 3)
}
