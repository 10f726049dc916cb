package domain

import "errors"

var (
	// ErrCustomerNotFound возвращается, если покупатель не найден в репозитории.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
)

// InvalidRequestError — нарушение бизнес-правила во входном запросе.
// Такие ошибки возвращаются инициатору запроса и не считаются сбоем системы;
// ошибки инфраструктуры проходят через сценарий без трансляции.
type InvalidRequestError struct {
	Message string
}

func (e *InvalidRequestError) Error() string {
	return e.Message
}

// NewInvalidRequest создаёт бизнес-ошибку с человекочитаемым сообщением.
func NewInvalidRequest(message string) error {
	return &InvalidRequestError{Message: message}
}

// IsInvalidRequest проверяет, является ли ошибка нарушением бизнес-правила.
func IsInvalidRequest(err error) bool {
	var target *InvalidRequestError
	return errors.As(err, &target)
}
