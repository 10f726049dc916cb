package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// customerRepositoryInMemory — простая in-memory реализация CustomerRepository.
type customerRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Customer
}

// NewCustomerRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewCustomerRepository() domain.CustomerRepository {
	return &customerRepositoryInMemory{
		items: make(map[string]domain.Customer),
	}
}

// Create сохраняет покупателя, выставляя ID и метки времени.
func (r *customerRepositoryInMemory) Create(_ context.Context, customer domain.Customer) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	customer.CreatedAt = now
	customer.UpdatedAt = now

	r.items[customer.ID] = customer
	return customer, nil
}

// FindByID возвращает покупателя или ErrCustomerNotFound, если его нет.
func (r *customerRepositoryInMemory) FindByID(_ context.Context, id string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

var _ domain.CustomerRepository = (*customerRepositoryInMemory)(nil)
