package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
	}
}

// Create сохраняет заказ с позициями, выставляя идентификаторы и метки времени.
func (r *orderRepositoryInMemory) Create(_ context.Context, params domain.CreateOrderParams) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	order := domain.Order{
		ID:         uuid.NewString(),
		CustomerID: params.Customer.ID,
		Customer:   params.Customer,
		Items:      make([]domain.OrderItem, 0, len(params.Items)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, item := range params.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.NewString(),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[order.ID] = cloneOrder(order)
	return order, nil
}

// FindByID возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) FindByID(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func cloneOrder(order domain.Order) domain.Order {
	clone := order
	clone.Items = make([]domain.OrderItem, len(order.Items))
	copy(clone.Items, order.Items)
	return clone
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
