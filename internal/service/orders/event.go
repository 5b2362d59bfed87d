package orders

import (
	"time"

	"service-shop-delivery/internal/domain"
)

// Event is a single order event from the ordering subsystem.
type Event struct {
	OrderID    string
	Status     domain.OrderStatus
	CustomerID string
	CreatedAt  time.Time
}
