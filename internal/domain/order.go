package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// ProductID — ссылка на товар каталога; обнуляется при удалении товара.
	ProductID string
	// Quantity — количество единиц товара.
	Quantity int32
	// Price — снимок цены каталога на момент оформления заказа.
	// Последующие изменения цены товара на исторические заказы не влияют.
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Order агрегирует заказ покупателя и его позиции.
type Order struct {
	ID         string
	CustomerID string
	Customer   Customer
	Items      []OrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Total возвращает сумму заказа: qty * price по всем позициям.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
