package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

// Create сохраняет заказ и его позиции одной транзакцией.
// Идентификаторы и метки времени выставляет база.
func (r *orderRepository) Create(ctx context.Context, params domain.CreateOrderParams) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	order := domain.Order{
		CustomerID: params.Customer.ID,
		Customer:   params.Customer,
		Items:      make([]domain.OrderItem, 0, len(params.Items)),
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_id)
		VALUES ($1)
		RETURNING id, created_at, updated_at
	`, params.Customer.ID).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			err = domain.ErrCustomerNotFound
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	for _, item := range params.Items {
		orderItem := domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO orders_products (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at
		`, order.ID, item.ProductID, item.Quantity, item.Price).Scan(
			&orderItem.ID, &orderItem.CreatedAt, &orderItem.UpdatedAt,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				err = domain.ErrProductNotFound
				return domain.Order{}, err
			}
			return domain.Order{}, fmt.Errorf("insert order item: %w", err)
		}
		order.Items = append(order.Items, orderItem)
	}

	if err = tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit create order: %w", err)
	}

	return order, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order domain.Order
	var customerID sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &customerID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	// customer_id обнуляется при удалении покупателя (ON DELETE SET NULL).
	if customerID.Valid {
		order.CustomerID = customerID.String
		customer, err := r.loadCustomer(ctx, customerID.String)
		if err != nil {
			return domain.Order{}, err
		}
		order.Customer = customer
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) loadCustomer(ctx context.Context, id string) (domain.Customer, error) {
	var customer domain.Customer
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM customers
		WHERE id = $1
	`, id).Scan(
		&customer.ID, &customer.Name, &customer.Email,
		&customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Покупатель удалён между чтениями заказа; заказ остаётся валидным.
			return domain.Customer{}, nil
		}
		return domain.Customer{}, fmt.Errorf("load order customer: %w", err)
	}
	return customer, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, quantity, price, created_at, updated_at
		FROM orders_products
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		var productID sql.NullString
		if err := rows.Scan(
			&item.ID, &productID, &item.Quantity, &item.Price,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.ProductID = productID.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
