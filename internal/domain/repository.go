package domain

// UserRepository описывает требования к хранилищу пользователей.
// Workflow-слой пользователей только читает.
type UserRepository interface {
	// Get возвращает пользователя по идентификатору или ErrUserNotFound.
	Get(id string) (User, error)
}

// ProductRepository описывает требования к хранилищу каталога.
type ProductRepository interface {
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(id string) (Product, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ вместе со списком товаров.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(id string) (Order, error)
	// GetForUser возвращает заказ, только если он принадлежит пользователю;
	// чужой или отсутствующий заказ неразличимы — ErrOrderNotFound.
	GetForUser(id, userID string) (Order, error)
	// ListByUser возвращает заказы пользователя, новые первыми.
	ListByUser(userID string, limit int) ([]Order, error)
}

// PaymentRepository описывает требования к хранилищу платежей.
//
// Инвариант «не более одного платежа PAID/PROCESSING на заказ» обязано
// атомарно обеспечивать само хранилище: проверка и запись не могут быть
// разнесены по разным вызовам.
type PaymentRepository interface {
	// CreateProcessing атомарно занимает платёжный слот заказа записью
	// в статусе PROCESSING. Если слот уже удержан (PAID или PROCESSING),
	// возвращает ErrPaymentExists. DECLINED-записи слот не удерживают.
	CreateProcessing(payment Payment) error
	// Settle переводит PROCESSING-запись в терминальный статус и
	// фиксирует внешнюю ссылку транзакции шлюза.
	Settle(id string, status PaymentStatus, transactionID string) (Payment, error)
	// Get возвращает платёж по идентификатору или ErrPaymentNotFound.
	Get(id string) (Payment, error)
	// ListByOrder возвращает все попытки оплаты заказа, старые первыми.
	ListByOrder(orderID string) ([]Payment, error)
}

// RegistrationRepository описывает требования к хранилищу регистраций.
//
// Create обязана атомарно выполнять обе проверки в фиксированном порядке:
// сначала дубль домена (ErrRegistrationExists), затем квота
// (ErrQuotaExceeded). Порядок наблюдаем клиентами: повтор того же домена
// при исчерпанной квоте обязан видеть конфликт, а не квоту.
type RegistrationRepository interface {
	// Create проверяет дубль домена и квоту и вставляет запись одной
	// атомарной операцией. maxPerOrder — лимит товара; 0 запрещает
	// регистрации полностью.
	Create(registration Registration, maxPerOrder int32) error
	// Get возвращает регистрацию по идентификатору или ErrRegistrationNotFound.
	Get(id string) (Registration, error)
	// ListForOrder возвращает регистрации тройки (user, product, order).
	ListForOrder(userID, productID, orderID string) ([]Registration, error)
}
