package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/gateway"
	"github.com/vladislavdragonenkov/commerce/internal/storage/memory"
	"github.com/vladislavdragonenkov/commerce/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Users         domain.UserRepository
	Products      domain.ProductRepository
	Orders        domain.OrderRepository
	Payments      domain.PaymentRepository
	Registrations domain.RegistrationRepository
	OutboxRepo    domain.OutboxRepository
	Gateway       domain.CardGateway
	Store         *postgres.Store
	Logger        *log.Entry
}

// NewDependencies собирает зависимости по конфигурации.
//
// Без PostgresDSN сервис работает на in-memory хранилище: удобно для
// локальной разработки и демо, но данные живут до рестарта. Без
// GatewayURL списания проводит mock-шлюз, подтверждающий всё подряд.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{Logger: logger}

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("ensure postgres schema: %w", err)
		}
		deps.Store = store
		deps.Users = postgres.NewUserRepository(store)
		deps.Products = postgres.NewProductRepository(store)
		deps.Orders = postgres.NewOrderRepository(store)
		deps.Payments = postgres.NewPaymentRepository(store)
		deps.Registrations = postgres.NewRegistrationRepository(store)
		deps.OutboxRepo = postgres.NewOutboxRepository(store)
		logger.Info("postgres storage initialized")
	} else {
		deps.Users = memory.NewUserRepository()
		deps.Products = memory.NewProductRepository()
		deps.Orders = memory.NewOrderRepository()
		deps.Payments = memory.NewPaymentRepository()
		deps.Registrations = memory.NewRegistrationRepository()
		deps.OutboxRepo = memory.NewOutboxRepository()
		logger.Warn("postgres dsn is empty, using in-memory storage")
	}

	if cfg.GatewayURL != "" {
		client := &http.Client{Timeout: 15 * time.Second}
		deps.Gateway = gateway.NewHTTPGateway(cfg.GatewayURL, client, logger.WithField("component", "card-gateway"))
		logger.WithField("gateway_url", cfg.GatewayURL).Info("http card gateway initialized")
	} else {
		deps.Gateway = gateway.NewMockGateway()
		logger.Warn("gateway url is empty, using mock card gateway")
	}

	return deps, nil
}

// Close освобождает ресурсы зависимостей.
func (d *Dependencies) Close() {
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
