package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product — позиция каталога с текущей ценой и остатком на складе.
type Product struct {
	ID   string
	Name string
	// Price хранится с фиксированной точностью NUMERIC(5,2).
	Price decimal.Decimal
	// Quantity — доступный остаток, не бывает отрицательным.
	Quantity  int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasStock сообщает, хватает ли остатка под запрошенное количество.
func (p Product) HasStock(qty int32) bool {
	return qty > 0 && p.Quantity >= qty
}

// StockUpdate задаёт новый абсолютный остаток товара (не дельту).
type StockUpdate struct {
	ID       string
	Quantity int32
}
