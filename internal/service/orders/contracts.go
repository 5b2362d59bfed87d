//go:generate mockgen -source=contracts.go -destination=mocks_test.go -package=orders_test

package orders

import (
	"context"

	"service-shop-delivery/internal/domain"
	"service-shop-delivery/internal/service/notify"
)

// OrderStore is the order storage. ApproveIfPaid must be a single atomic
// compare-and-set from payment-confirmed to approved.
type OrderStore interface {
	Get(ctx context.Context, id string) (*domain.Order, error)
	ApproveIfPaid(ctx context.Context, id, courierID string) (*domain.Order, error)
	UpsertIntake(ctx context.Context, o *domain.Order) (bool, error)
}

// Notifier delivers the messages produced by a transition.
type Notifier interface {
	Notify(ctx context.Context, msgs ...notify.Message) error
}
