package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/order"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

// recordingProductRepo оборачивает каталог, записывая пакеты списаний
// и позволяя подменять ошибки коллабораторов.
type recordingProductRepo struct {
	domain.ProductRepository
	findErr   error
	updateErr error
	updates   [][]domain.StockUpdate
}

func (r *recordingProductRepo) FindAllByID(ctx context.Context, ids []string) ([]domain.Product, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.ProductRepository.FindAllByID(ctx, ids)
}

func (r *recordingProductRepo) UpdateQuantity(ctx context.Context, updates []domain.StockUpdate) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates = append(r.updates, updates)
	return r.ProductRepository.UpdateQuantity(ctx, updates)
}

type recordingOrderRepo struct {
	domain.OrderRepository
	createErr   error
	createCalls int
}

func (r *recordingOrderRepo) Create(ctx context.Context, params domain.CreateOrderParams) (domain.Order, error) {
	if r.createErr != nil {
		return domain.Order{}, r.createErr
	}
	r.createCalls++
	return r.OrderRepository.Create(ctx, params)
}

type countingCustomerRepo struct {
	domain.CustomerRepository
	findCalls int
}

func (r *countingCustomerRepo) FindByID(ctx context.Context, id string) (domain.Customer, error) {
	r.findCalls++
	return r.CustomerRepository.FindByID(ctx, id)
}

type fixture struct {
	customers *countingCustomerRepo
	products  *recordingProductRepo
	orders    *recordingOrderRepo
	svc       *order.Service
}

func newFixture() *fixture {
	customers := &countingCustomerRepo{CustomerRepository: memory.NewCustomerRepository()}
	products := &recordingProductRepo{ProductRepository: memory.NewProductRepository()}
	orders := &recordingOrderRepo{OrderRepository: memory.NewOrderRepository()}

	return &fixture{
		customers: customers,
		products:  products,
		orders:    orders,
		svc:       order.NewServiceWithoutMetrics(customers, products, orders, nil),
	}
}

func (f *fixture) seedCustomer(t *testing.T) domain.Customer {
	t.Helper()

	customer, err := f.customers.Create(context.Background(), domain.Customer{
		Name:  "Customer One",
		Email: "customer@example.com",
	})
	require.NoError(t, err)
	return customer
}

func (f *fixture) seedProduct(t *testing.T, name, price string, quantity int32) domain.Product {
	t.Helper()

	product, err := f.products.Create(context.Background(), domain.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
	})
	require.NoError(t, err)
	return product
}

// requireNoWrites проверяет, что ни заказ, ни остатки не были изменены.
func (f *fixture) requireNoWrites(t *testing.T) {
	t.Helper()

	require.Zero(t, f.orders.createCalls, "no order must be persisted")
	require.Empty(t, f.products.updates, "no stock update must be applied")
}

func TestExecute_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	customer := f.seedCustomer(t)
	p1 := f.seedProduct(t, "Keyboard", "25.00", 10)
	p2 := f.seedProduct(t, "Mouse", "9.99", 3)

	created, err := f.svc.Execute(ctx, order.CreateOrderRequest{
		CustomerID: customer.ID,
		Products: []order.RequestedProduct{
			{ID: p1.ID, Quantity: 2},
			{ID: p2.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	require.NotEmpty(t, created.ID)
	require.Equal(t, customer.ID, created.CustomerID)
	require.Equal(t, customer.ID, created.Customer.ID)
	require.False(t, created.CreatedAt.IsZero())

	// По одной позиции на каждый запрошенный товар, цена — снимок каталога.
	require.Len(t, created.Items, 2)
	require.Equal(t, p1.ID, created.Items[0].ProductID)
	require.EqualValues(t, 2, created.Items[0].Quantity)
	require.True(t, created.Items[0].Price.Equal(decimal.RequireFromString("25.00")))
	require.Equal(t, p2.ID, created.Items[1].ProductID)
	require.EqualValues(t, 3, created.Items[1].Quantity)
	require.True(t, created.Items[1].Price.Equal(decimal.RequireFromString("9.99")))
	require.True(t, created.Total().Equal(decimal.RequireFromString("79.97")))

	// Остатки списаны одним пакетом с новыми абсолютными значениями.
	require.Len(t, f.products.updates, 1)
	require.Equal(t, []domain.StockUpdate{
		{ID: p1.ID, Quantity: 8},
		{ID: p2.ID, Quantity: 0},
	}, f.products.updates[0])

	catalog, err := f.products.FindAllByID(ctx, []string{p1.ID, p2.ID})
	require.NoError(t, err)
	require.EqualValues(t, 8, catalog[0].Quantity)
	require.EqualValues(t, 0, catalog[1].Quantity)
}

func TestExecute_SnapshotPriceSurvivesCatalogChange(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	customer := f.seedCustomer(t)
	product := f.seedProduct(t, "Keyboard", "25.00", 10)

	created, err := f.svc.Execute(ctx, order.CreateOrderRequest{
		CustomerID: customer.ID,
		Products:   []order.RequestedProduct{{ID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// Перезаписываем товар с новой ценой: исторический заказ хранит снимок.
	product.Price = decimal.RequireFromString("99.99")
	_, err = f.products.Create(ctx, product)
	require.NoError(t, err)

	stored, err := f.orders.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, stored.Items[0].Price.Equal(decimal.RequireFromString("25.00")))
}

func TestExecute_CustomerNotFound(t *testing.T) {
	f := newFixture()

	p1 := f.seedProduct(t, "Keyboard", "25.00", 10)

	_, err := f.svc.Execute(context.Background(), order.CreateOrderRequest{
		CustomerID: "missing-customer",
		Products:   []order.RequestedProduct{{ID: p1.ID, Quantity: 1}},
	})
	require.Error(t, err)
	require.True(t, domain.IsInvalidRequest(err))
	require.EqualError(t, err, "Customer not exists!")
	f.requireNoWrites(t)
}

func TestExecute_EmptyCatalogFetch(t *testing.T) {
	f := newFixture()

	customer := f.seedCustomer(t)

	_, err := f.svc.Execute(context.Background(), order.CreateOrderRequest{
		CustomerID: customer.ID,
		Products:   []order.RequestedProduct{{ID: "unknown-product", Quantity: 1}},
	})
	require.Error(t, err)
	require.True(t, domain.IsInvalidRequest(err))
	require.EqualError(t, err, "Could not find any products!")
	f.requireNoWrites(t)
}

func TestExecute_UnknownProductAmongValid(t *testing.T) {
	f := newFixture()

	customer := f.seedCustomer(t)
	p1 := f.seedProduct(t, "Keyboard", "25.00", 10)

	_, err := f.svc.Execute(context.Background(), order.CreateOrderRequest{
		CustomerID: customer.ID,
		Products: []order.RequestedProduct{
			{ID: p1.ID, Quantity: 1},
			{ID: "unknown-product", Quantity: 1},
		},
	})
	require.Error(t, err)
	require.True(t, domain.IsInvalidRequest(err))
	// Сообщение отличает неизвестный товар от нехватки остатка.
	require.EqualError(t, err, "This products not exists!")
	f.requireNoWrites(t)
}

func TestExecute_StockExceeded(t *testing.T) {
	f := newFixture()

	customer := f.seedCustomer(t)
	p1 := f.seedProduct(t, "Keyboard", "25.00", 10)
	p2 := f.seedProduct(t, "Mouse", "9.99", 3)

	_, err := f.svc.Execute(context.Background(), order.CreateOrderRequest{
		CustomerID: customer.ID,
		Products: []order.RequestedProduct{
			{ID: p1.ID, Quantity: 2},
			{ID: p2.ID, Quantity: 5},
		},
	})
	require.Error(t, err)
	require.True(t, domain.IsInvalidRequest(err))
	require.EqualError(t, err, "the quantity products is not available!")
	f.requireNoWrites(t)
}

func TestExecute_RequestValidation(t *testing.T) {
	cases := []struct {
		name string
		req  order.CreateOrderRequest
	}{
		{
			name: "empty customer id",
			req: order.CreateOrderRequest{
				Products: []order.RequestedProduct{{ID: "p1", Quantity: 1}},
			},
		},
		{
			name: "no products",
			req:  order.CreateOrderRequest{CustomerID: "c1"},
		},
		{
			name: "empty product id",
			req: order.CreateOrderRequest{
				CustomerID: "c1",
				Products:   []order.RequestedProduct{{Quantity: 1}},
			},
		},
		{
			name: "zero quantity",
			req: order.CreateOrderRequest{
				CustomerID: "c1",
				Products:   []order.RequestedProduct{{ID: "p1", Quantity: 0}},
			},
		},
		{
			name: "negative quantity",
			req: order.CreateOrderRequest{
				CustomerID: "c1",
				Products:   []order.RequestedProduct{{ID: "p1", Quantity: -2}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.svc.Execute(context.Background(), tc.req)
			require.Error(t, err)
			require.True(t, domain.IsInvalidRequest(err))

			// Запрос отклонён до обращения к хранилищам.
			require.Zero(t, f.customers.findCalls)
			f.requireNoWrites(t)
		})
	}
}

func TestExecute_CatalogErrorPropagates(t *testing.T) {
	f := newFixture()

	customer := f.seedCustomer(t)
	infraErr := errors.New("connection refused")
	f.products.findErr = infraErr

	_, err := f.svc.Execute(context.Background(), order.CreateOrderRequest{
		CustomerID: customer.ID,
		Products:   []order.RequestedProduct{{ID: "p1", Quantity: 1}},
	})
	require.Error(t, err)
	require.False(t, domain.IsInvalidRequest(err))
	require.ErrorIs(t, err, infraErr)
	f.requireNoWrites(t)
}

func TestExecute_PersistErrorPropagates(t *testing.T) {
	f := newFixture()

	customer := f.seedCustomer(t)
	p1 := f.seedProduct(t, "Keyboard", "25.00", 10)

	infraErr := errors.New("insert order: broken pipe")
	f.orders.createErr = infraErr

	_, err := f.svc.Execute(context.Background(), order.CreateOrderRequest{
		CustomerID: customer.ID,
		Products:   []order.RequestedProduct{{ID: p1.ID, Quantity: 1}},
	})
	require.Error(t, err)
	require.False(t, domain.IsInvalidRequest(err))
	require.ErrorIs(t, err, infraErr)
	require.Empty(t, f.products.updates, "stock must not change when persist fails")
}

func TestExecute_StockUpdateFailureAfterPersist(t *testing.T) {
	f := newFixture()

	customer := f.seedCustomer(t)
	p1 := f.seedProduct(t, "Keyboard", "25.00", 10)

	infraErr := errors.New("update products: broken pipe")
	f.products.updateErr = infraErr

	_, err := f.svc.Execute(context.Background(), order.CreateOrderRequest{
		CustomerID: customer.ID,
		Products:   []order.RequestedProduct{{ID: p1.ID, Quantity: 1}},
	})
	require.Error(t, err)
	require.False(t, domain.IsInvalidRequest(err))
	require.ErrorIs(t, err, infraErr)

	// Заказ уже сохранён: компенсации на этом уровне нет.
	require.Equal(t, 1, f.orders.createCalls)
}
