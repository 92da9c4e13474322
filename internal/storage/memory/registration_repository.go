package memory

import (
	"errors"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// registrationRepositoryInMemory — in-memory реализация RegistrationRepository.
//
// Дубль домена и квота проверяются под одним мьютексом вместе со
// вставкой, поэтому конкурентные вызовы не могут вдвоём пройти проверку
// квоты. Порядок отказов фиксирован: сначала дубль, затем квота.
type registrationRepositoryInMemory struct {
	mu    sync.Mutex
	items map[string]domain.Registration
}

// NewRegistrationRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewRegistrationRepository() *registrationRepositoryInMemory {
	return &registrationRepositoryInMemory{
		items: make(map[string]domain.Registration),
	}
}

// Create атомарно проверяет дубль домена, квоту и вставляет запись.
func (r *registrationRepositoryInMemory) Create(registration domain.Registration, maxPerOrder int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[registration.ID]; exists {
		return errors.New("registration id already exists")
	}

	existing := 0
	for _, reg := range r.items {
		if reg.UserID != registration.UserID ||
			reg.ProductID != registration.ProductID ||
			reg.OrderID != registration.OrderID {
			continue
		}
		if reg.Domain == registration.Domain {
			return domain.ErrRegistrationExists
		}
		existing++
	}

	if maxPerOrder == 0 || int32(existing) >= maxPerOrder {
		return domain.ErrQuotaExceeded
	}

	r.items[registration.ID] = registration
	return nil
}

// Get возвращает регистрацию или ErrRegistrationNotFound.
func (r *registrationRepositoryInMemory) Get(id string) (domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	registration, ok := r.items[id]
	if !ok {
		return domain.Registration{}, domain.ErrRegistrationNotFound
	}
	return registration, nil
}

// ListForOrder возвращает регистрации тройки (user, product, order), старые первыми.
func (r *registrationRepositoryInMemory) ListForOrder(userID, productID, orderID string) ([]domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.Registration, 0)
	for _, reg := range r.items {
		if reg.UserID == userID && reg.ProductID == productID && reg.OrderID == orderID {
			result = append(result, reg)
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

var _ domain.RegistrationRepository = (*registrationRepositoryInMemory)(nil)
