package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
)

// RequestedProduct — одна запрошенная позиция: товар каталога и количество.
type RequestedProduct struct {
	ID       string
	Quantity int32
}

// CreateOrderRequest — входной запрос на оформление заказа.
type CreateOrderRequest struct {
	CustomerID string
	Products   []RequestedProduct
}

// Service реализует сценарий оформления заказа: последовательная валидация
// запроса, снимок цен, сохранение заказа и списание остатков. Никаких
// побочных эффектов до прохождения всех проверок.
type Service struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
	logger    *log.Entry
	metrics   *metrics.OrderMetrics
}

// NewService создаёт рабочий экземпляр сценария.
func NewService(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "create-order")
	}
	return &Service{
		customers: customers,
		products:  products,
		orders:    orders,
		logger:    logger,
		metrics:   metrics.NewOrderMetrics(),
	}
}

// NewServiceWithoutMetrics создаёт сценарий без метрик (для тестов).
func NewServiceWithoutMetrics(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	logger *log.Entry,
) *Service {
	svc := NewService(customers, products, orders, logger)
	svc.metrics = nil
	return svc
}

// Execute проводит запрос через цепочку проверок и создаёт заказ.
// Нарушения бизнес-правил возвращаются как InvalidRequestError; ошибки
// хранилищ проходят наверх без трансляции.
func (s *Service) Execute(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordCreateDuration(time.Since(start))
		}
	}()

	if err := validateRequest(req); err != nil {
		s.reject(metrics.ReasonBadRequest, err)
		return domain.Order{}, err
	}

	customer, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			rejectErr := domain.NewInvalidRequest("Customer not exists!")
			s.reject(metrics.ReasonCustomer, rejectErr)
			return domain.Order{}, rejectErr
		}
		return domain.Order{}, fmt.Errorf("find customer: %w", err)
	}

	ids := lo.Map(req.Products, func(p RequestedProduct, _ int) string { return p.ID })

	catalog, err := s.products.FindAllByID(ctx, ids)
	if err != nil {
		return domain.Order{}, fmt.Errorf("find products: %w", err)
	}
	if len(catalog) == 0 {
		rejectErr := domain.NewInvalidRequest("Could not find any products!")
		s.reject(metrics.ReasonEmptyCatalog, rejectErr)
		return domain.Order{}, rejectErr
	}

	catalogByID := lo.KeyBy(catalog, func(p domain.Product) string { return p.ID })

	// Шаг полноты: каждый запрошенный товар должен существовать в каталоге.
	for _, requested := range req.Products {
		if _, ok := catalogByID[requested.ID]; !ok {
			s.logger.WithField("product_id", requested.ID).Debug("requested product is unknown to catalog")
			rejectErr := domain.NewInvalidRequest("This products not exists!")
			s.reject(metrics.ReasonUnknownProduct, rejectErr)
			return domain.Order{}, rejectErr
		}
	}

	// Шаг остатков: остаток каталога покрывает каждое запрошенное количество.
	for _, requested := range req.Products {
		if !catalogByID[requested.ID].HasStock(requested.Quantity) {
			s.logger.WithFields(log.Fields{
				"product_id": requested.ID,
				"requested":  requested.Quantity,
				"available":  catalogByID[requested.ID].Quantity,
			}).Debug("requested quantity exceeds available stock")
			rejectErr := domain.NewInvalidRequest("the quantity products is not available!")
			s.reject(metrics.ReasonStock, rejectErr)
			return domain.Order{}, rejectErr
		}
	}

	// Снимок цен: каждая позиция получает текущую цену своего товара,
	// скопированную в этот момент.
	items := lo.Map(req.Products, func(p RequestedProduct, _ int) domain.OrderItemParams {
		return domain.OrderItemParams{
			ProductID: p.ID,
			Quantity:  p.Quantity,
			Price:     catalogByID[p.ID].Price,
		}
	})

	order, err := s.orders.Create(ctx, domain.CreateOrderParams{
		Customer: customer,
		Items:    items,
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	updates := lo.Map(req.Products, func(p RequestedProduct, _ int) domain.StockUpdate {
		return domain.StockUpdate{
			ID:       p.ID,
			Quantity: catalogByID[p.ID].Quantity - p.Quantity,
		}
	})

	// Списание выполняется после сохранения заказа. При ошибке заказ уже
	// сохранён, компенсирующая транзакция не предусмотрена.
	if err := s.products.UpdateQuantity(ctx, updates); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("stock update failed after order was persisted")
		return domain.Order{}, fmt.Errorf("update product quantity: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": customer.ID,
		"items":       len(order.Items),
	}).Info("order created")

	if s.metrics != nil {
		s.metrics.RecordOrderCreated(len(order.Items))
	}

	return order, nil
}

func (s *Service) reject(reason string, err error) {
	s.logger.WithField("reason", reason).Info(err.Error())
	if s.metrics != nil {
		s.metrics.RecordOrderRejected(reason)
	}
}

// validateRequest отклоняет заведомо некорректный запрос до обращения
// к хранилищам: пустой покупатель, пустой список товаров, пустой
// идентификатор или неположительное количество.
func validateRequest(req CreateOrderRequest) error {
	if strings.TrimSpace(req.CustomerID) == "" {
		return domain.NewInvalidRequest("customer_id is required")
	}
	if len(req.Products) == 0 {
		return domain.NewInvalidRequest("order must contain at least one product")
	}
	for _, p := range req.Products {
		if strings.TrimSpace(p.ID) == "" {
			return domain.NewInvalidRequest("product id is required")
		}
		if p.Quantity <= 0 {
			return domain.NewInvalidRequest("product quantity must be greater than zero")
		}
	}
	return nil
}
