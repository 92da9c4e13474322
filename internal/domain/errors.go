package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора пользователя.
	ErrUserIDRequired = errors.New("user_id is required")
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrProductIDsRequired = errors.New("order must reference at least one product")
	// Ошибка отрицательной суммы налога.
	ErrTaxNegative = errors.New("tax_minor must be non-negative")
	// Ошибка отрицательной цены товара.
	ErrPriceNegative = errors.New("product price must be non-negative")
	// Ошибка несоответствия итога заказа сумме цен и налога.
	ErrTotalMismatch = errors.New("order total does not match products sum plus tax")
	// Ошибка отсутствующего идентификатора заказа в платеже/регистрации.
	ErrOrderIDRequired = errors.New("order_id is required")
	// Ошибка отсутствующего идентификатора товара в регистрации.
	ErrProductIDRequired = errors.New("product_id is required")
	// Ошибка отсутствующего домена регистрации.
	ErrDomainRequired = errors.New("registration domain is required")
	// Ошибка отрицательной суммы платежа.
	ErrPaymentAmountNegative = errors.New("payment amount must be non-negative")
	// Ошибка неподдерживаемого статуса платежа.
	ErrPaymentStatusInvalid = errors.New("unsupported payment status")

	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrProductNotFound возвращается, если хотя бы один товар не найден.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден (или принадлежит другому пользователю).
	ErrOrderNotFound = errors.New("order not found")
	// ErrPaymentNotFound возвращается, если платёж не найден.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrRegistrationNotFound возвращается, если регистрация не найдена.
	ErrRegistrationNotFound = errors.New("registration not found")

	// ErrProductDiscontinued — товар снят с продажи, заказ с ним оформить нельзя.
	ErrProductDiscontinued = errors.New("cannot create order for discontinued product")
	// ErrAmountMismatch — ожидаемая клиентом сумма не совпадает с итогом заказа.
	ErrAmountMismatch = errors.New("order total and charge amount do not match")
	// ErrPaymentExists — по заказу уже есть платёж в статусе PAID или PROCESSING.
	ErrPaymentExists = errors.New("payment already exists for order")
	// ErrPaymentDeclined — платёж отклонён шлюзом; DECLINED-запись уже сохранена.
	ErrPaymentDeclined = errors.New("payment declined by gateway")
	// ErrRegistrationExists — домен уже зарегистрирован для этой тройки user/product/order.
	ErrRegistrationExists = errors.New("already registered at this domain")
	// ErrQuotaExceeded — лимит регистраций на заказ исчерпан.
	ErrQuotaExceeded = errors.New("max registrations exceeded")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsConflict проверяет, что ошибка нарушает инвариант уникальности/идемпотентности.
func IsConflict(err error) bool {
	return errors.Is(err, ErrPaymentExists) || errors.Is(err, ErrRegistrationExists)
}

// IsNotFound проверяет, что ошибка означает отсутствие сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrRegistrationNotFound)
}
