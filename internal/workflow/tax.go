package workflow

import "github.com/vladislavdragonenkov/commerce/internal/domain"

// TaxPolicy вычисляет налог для набора товаров заказа. Итог заказа всегда
// считается как налог плюс сумма цен, поэтому подмена политики не меняет
// контракт CreateOrder.
type TaxPolicy interface {
	TaxMinor(products []domain.Product) int64
}

// zeroTax — действующая политика: налог пока не начисляется.
type zeroTax struct{}

// NewZeroTaxPolicy возвращает политику с нулевым налогом.
func NewZeroTaxPolicy() TaxPolicy {
	return zeroTax{}
}

func (zeroTax) TaxMinor([]domain.Product) int64 {
	return 0
}

var _ TaxPolicy = zeroTax{}
