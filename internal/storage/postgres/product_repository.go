package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, price, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, product.Name, product.Price, product.Quantity).Scan(
		&product.ID, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindAllByID(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT id, name, price, quantity, created_at, updated_at
		FROM products
		WHERE id IN (%s)
		ORDER BY created_at ASC, id ASC
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, len(ids))
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Price, &product.Quantity,
			&product.CreatedAt, &product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// UpdateQuantity применяет новые абсолютные остатки одной транзакцией:
// пакет либо применяется целиком, либо не применяется вовсе.
func (r *productRepository) UpdateQuantity(ctx context.Context, updates []domain.StockUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, update := range updates {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `
			UPDATE products
			SET quantity = $1,
			    updated_at = NOW()
			WHERE id = $2
		`, update.Quantity, update.ID)
		if err != nil {
			return fmt.Errorf("update product quantity: %w", err)
		}

		var affected int64
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			err = domain.ErrProductNotFound
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit quantity updates: %w", err)
	}

	return nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
