package domain

import "time"

// Registration — факт того, что домен занял один из активационных
// слотов товара по конкретному заказу. Записи не изменяются и не удаляются.
type Registration struct {
	ID        string
	UserID    string
	ProductID string
	OrderID   string
	// Domain — нормализованное имя хоста без схемы (например, "lol.com").
	Domain    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет корректность полей регистрации.
func (r *Registration) Validate() []error {
	var errs []error

	if r.UserID == "" {
		errs = append(errs, ErrUserIDRequired)
	}
	if r.ProductID == "" {
		errs = append(errs, ErrProductIDRequired)
	}
	if r.OrderID == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if r.Domain == "" {
		errs = append(errs, ErrDomainRequired)
	}

	return errs
}
