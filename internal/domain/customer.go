package domain

import "time"

// Customer — покупатель, от имени которого оформляются заказы.
// Сценарию создания заказа важен только факт существования записи.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
