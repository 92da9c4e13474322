package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// userRepositoryInMemory — простая in-memory реализация UserRepository.
type userRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.User
}

// NewUserRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewUserRepository() *userRepositoryInMemory {
	return &userRepositoryInMemory{
		items: make(map[string]domain.User),
	}
}

// Put сохраняет пользователя. Workflow-слой пользователей не создаёт,
// метод нужен для сидинга dev-окружения и тестов.
func (r *userRepositoryInMemory) Put(user domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[user.ID] = user
}

// Get возвращает пользователя или ErrUserNotFound.
func (r *userRepositoryInMemory) Get(id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.items[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

var _ domain.UserRepository = (*userRepositoryInMemory)(nil)
