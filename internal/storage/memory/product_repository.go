package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// productRepositoryInMemory — простая in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory каталог для локальной разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Create сохраняет товар, выставляя ID и метки времени.
func (r *productRepositoryInMemory) Create(_ context.Context, product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	product.CreatedAt = now
	product.UpdatedAt = now

	r.items[product.ID] = product
	return product, nil
}

// FindAllByID возвращает товары по списку идентификаторов.
// Неизвестные и повторяющиеся идентификаторы пропускаются.
func (r *productRepositoryInMemory) FindAllByID(_ context.Context, ids []string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if product, ok := r.items[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

// UpdateQuantity применяет новые абсолютные остатки ко всем товарам пакета.
func (r *productRepositoryInMemory) UpdateQuantity(_ context.Context, updates []domain.StockUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Сначала проверяем весь пакет, чтобы не применить его частично.
	for _, update := range updates {
		if _, ok := r.items[update.ID]; !ok {
			return domain.ErrProductNotFound
		}
	}

	now := time.Now().UTC()
	for _, update := range updates {
		product := r.items[update.ID]
		product.Quantity = update.Quantity
		product.UpdatedAt = now
		r.items[update.ID] = product
	}
	return nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
