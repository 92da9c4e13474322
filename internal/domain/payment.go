package domain

import "time"

// PaymentStatus описывает исход одной попытки оплаты заказа.
type PaymentStatus string

const (
	// PaymentStatusPaid — шлюз подтвердил списание; терминальный статус.
	PaymentStatusPaid PaymentStatus = "PAID"
	// PaymentStatusProcessing — попытка оплаты в полёте: слот заказа занят,
	// исход шлюза ещё не зафиксирован.
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	// PaymentStatusDeclined — шлюз отклонил списание; терминальный статус.
	// DECLINED-записей по заказу может накопиться несколько.
	PaymentStatusDeclined PaymentStatus = "DECLINED"
	// PaymentStatusCancelled зарезервирован: переходы в него не реализованы.
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	// PaymentStatusRefunded зарезервирован: переходы в него не реализованы.
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusProcessing, PaymentStatusDeclined,
		PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// Live сообщает, удерживает ли статус платёжный слот заказа.
// Инвариант идемпотентности: на заказ не более одного live-платежа.
func (s PaymentStatus) Live() bool {
	return s == PaymentStatusPaid || s == PaymentStatusProcessing
}

// Payment — запись об одной попытке оплаты заказа через внешний шлюз.
// Статус назначается при расчёте и дальше не мутируется.
type Payment struct {
	ID      string
	OrderID string
	UserID  string
	// TransactionID — внешняя ссылка на транзакцию шлюза. Пуста, пока
	// попытка в статусе PROCESSING.
	TransactionID string
	AmountMinor   int64
	Status        PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate проверяет корректность полей платежа и возвращает ошибки, если они есть.
func (p *Payment) Validate() []error {
	var errs []error

	if p.OrderID == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if p.UserID == "" {
		errs = append(errs, ErrUserIDRequired)
	}
	if p.AmountMinor < 0 {
		errs = append(errs, ErrPaymentAmountNegative)
	}
	if !p.Status.Valid() {
		errs = append(errs, ErrPaymentStatusInvalid)
	}

	return errs
}

// PaymentToken — клиентский токенизационный хэндл шлюза.
type PaymentToken struct {
	Token string
}
