package approval

import (
	"context"

	"service-shop-delivery/internal/domain"
)

// approver is the storage operation the gate needs.
type approver interface {
	Approve(ctx context.Context, ref domain.AccountRef) (bool, error)
}
