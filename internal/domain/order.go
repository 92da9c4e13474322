package domain

import "time"

// Order — оформленное намерение покупки: пользователь, набор товаров
// и посчитанный итог. После создания заказ в этом слое не изменяется.
type Order struct {
	ID     string
	UserID string
	// Products — полный список товаров заказа. Один товар может
	// встречаться несколько раз: входные id не дедуплицируются.
	Products []Product
	// TaxMinor — налог в минимальных единицах. Сейчас всегда 0,
	// но участвует в расчёте итога, чтобы налоговая политика
	// подменялась без изменения контракта.
	TaxMinor int64
	// TotalMinor == TaxMinor + Σ Products[i].PriceMinor.
	TotalMinor int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" {
		errs = append(errs, ErrUserIDRequired)
	}
	if len(o.Products) == 0 {
		errs = append(errs, ErrProductIDsRequired)
	}
	if o.TaxMinor < 0 {
		errs = append(errs, ErrTaxNegative)
	}

	// Сверяем итог с суммой цен и налогом.
	calc := o.TaxMinor
	for _, product := range o.Products {
		if product.PriceMinor < 0 {
			errs = append(errs, ErrPriceNegative)
		}
		calc += product.PriceMinor
	}
	if calc != o.TotalMinor {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}

// ProductIDs возвращает идентификаторы товаров в порядке их появления в заказе.
func (o *Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.Products))
	for _, product := range o.Products {
		ids = append(ids, product.ID)
	}
	return ids
}
