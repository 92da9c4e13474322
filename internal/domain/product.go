package domain

import "time"

// ProductStatus описывает доступность товара для продажи.
type ProductStatus string

const (
	// ProductStatusActive — товар доступен для заказа.
	ProductStatusActive ProductStatus = "ACTIVE"
	// ProductStatusDiscontinued — товар снят с продажи; новые заказы запрещены.
	ProductStatusDiscontinued ProductStatus = "DISCONTINUED"
)

// Product — товар каталога. Для workflow-слоя read-only вход:
// цена, статус и лимит регистраций задаются каталогом.
type Product struct {
	ID string
	// Name уникально в каталоге.
	Name string
	// PriceMinor — цена в минимальных денежных единицах (центы).
	PriceMinor int64
	Status     ProductStatus
	// MaxRegistrationsPerOrder — сколько доменов можно активировать
	// по одному заказу этого товара. 0 означает «регистрации запрещены».
	MaxRegistrationsPerOrder int32
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Discontinued сообщает, запрещён ли товар к заказу.
func (p Product) Discontinued() bool {
	return p.Status == ProductStatusDiscontinued
}
