package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// CustomerRepository описывает требования к хранилищу покупателей.
type CustomerRepository interface {
	// Create сохраняет покупателя и возвращает запись с ID и метками времени.
	Create(ctx context.Context, customer Customer) (Customer, error)
	// FindByID возвращает покупателя или ErrCustomerNotFound, если его нет.
	FindByID(ctx context.Context, id string) (Customer, error)
}

// ProductRepository описывает каталог товаров и управление остатками.
type ProductRepository interface {
	// Create сохраняет товар и возвращает запись с ID и метками времени.
	Create(ctx context.Context, product Product) (Product, error)
	// FindAllByID возвращает товары каталога по списку идентификаторов.
	// Неизвестные идентификаторы молча пропускаются.
	FindAllByID(ctx context.Context, ids []string) ([]Product, error)
	// UpdateQuantity применяет новые абсолютные остатки к товарам.
	UpdateQuantity(ctx context.Context, updates []StockUpdate) error
}

// OrderItemParams — данные одной позиции при создании заказа.
type OrderItemParams struct {
	ProductID string
	Quantity  int32
	Price     decimal.Decimal
}

// CreateOrderParams — данные для создания заказа вместе с позициями.
type CreateOrderParams struct {
	Customer Customer
	Items    []OrderItemParams
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет заказ с позициями и возвращает созданную запись
	// с идентификаторами и метками времени, выставленными хранилищем.
	Create(ctx context.Context, params CreateOrderParams) (Order, error)
	// FindByID возвращает заказ с позициями или ErrOrderNotFound.
	FindByID(ctx context.Context, id string) (Order, error)
}
