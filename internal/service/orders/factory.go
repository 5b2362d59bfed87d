package orders

import (
	"context"

	"service-shop-delivery/internal/domain"
)

type actionFunc func(context.Context, Event) error

type actionFactory struct {
	byStatus map[domain.OrderStatus]actionFunc
}

// Approval is owned by this service, so intake only mirrors the statuses
// that precede it.
func newActionFactory(onCreated, onPaymentConfirmed actionFunc) *actionFactory {
	return &actionFactory{
		byStatus: map[domain.OrderStatus]actionFunc{
			domain.StatusCreated:          onCreated,
			domain.StatusPaymentConfirmed: onPaymentConfirmed,
		},
	}
}

func (f *actionFactory) get(status domain.OrderStatus) (actionFunc, bool) {
	fn, ok := f.byStatus[status]
	return fn, ok
}
