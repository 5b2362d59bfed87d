package approval

import (
	"context"
	"fmt"
	"time"

	"service-shop-delivery/internal/apperr"
	"service-shop-delivery/internal/config"
	"service-shop-delivery/internal/domain"
	"service-shop-delivery/internal/logx"
)

// Gate flips an account's approved flag. The flag only ever moves to true.
type Gate struct {
	store            approver
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewGate creates an approval Gate.
func NewGate(store approver, timeout time.Duration, logger logx.Logger) *Gate {
	if timeout <= 0 {
		timeout = config.DefaultOperationTimeout()
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Gate{store: store, operationTimeout: timeout, logger: logger}
}

// Approve marks the account approved. Approving an approved account succeeds
// without change.
func (g *Gate) Approve(ctx context.Context, ref domain.AccountRef) error {
	if !ref.Valid() {
		return fmt.Errorf("account reference: %w", apperr.ErrInvalid)
	}

	ctx, cancel := context.WithTimeout(ctx, g.operationTimeout)
	defer cancel()

	ok, err := g.store.Approve(ctx, ref)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", ref.Kind, apperr.ErrNotFound)
	}

	g.logger.Info("account approved",
		logx.String("event", "account_approved"),
		logx.String("kind", string(ref.Kind)),
		logx.String("account_id", ref.ID),
		logx.String("email", ref.Email),
	)
	return nil
}
