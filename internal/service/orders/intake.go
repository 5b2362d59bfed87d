package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"service-shop-delivery/internal/apperr"
	"service-shop-delivery/internal/config"
	"service-shop-delivery/internal/domain"
	"service-shop-delivery/internal/logx"
)

// Intake mirrors order events into the order store.
type Intake struct {
	store            OrderStore
	factory          *actionFactory
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewIntake creates an Intake.
func NewIntake(store OrderStore, timeout time.Duration, logger logx.Logger) *Intake {
	if timeout <= 0 {
		timeout = config.DefaultOperationTimeout()
	}
	if logger == nil {
		logger = logx.Nop()
	}
	in := &Intake{
		store:            store,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
	in.factory = newActionFactory(in.upsert, in.upsert)
	return in
}

// Handle applies e. Events with other statuses are ignored.
func (in *Intake) Handle(ctx context.Context, e Event) error {
	e.OrderID = strings.TrimSpace(e.OrderID)
	e.CustomerID = strings.TrimSpace(e.CustomerID)
	if e.OrderID == "" || e.CustomerID == "" {
		return fmt.Errorf("order event ids: %w", apperr.ErrInvalid)
	}
	fn, ok := in.factory.get(e.Status)
	if !ok {
		in.logger.Debug("order event skipped",
			logx.String("order_id", e.OrderID),
			logx.String("status", e.Status.String()),
		)
		return nil
	}
	return fn(ctx, e)
}

func (in *Intake) upsert(ctx context.Context, e Event) error {
	ctx, cancel := context.WithTimeout(ctx, in.operationTimeout)
	defer cancel()

	created := e.CreatedAt
	if created.IsZero() {
		created = in.now()
	}
	written, err := in.store.UpsertIntake(ctx, &domain.Order{
		ID:         e.OrderID,
		Status:     e.Status,
		CustomerID: e.CustomerID,
		CreatedAt:  created,
	})
	if err != nil {
		return err
	}
	in.logger.Info("order event applied",
		logx.String("event", "order_mirrored"),
		logx.String("order_id", e.OrderID),
		logx.String("status", e.Status.String()),
		logx.Bool("written", written),
	)
	return nil
}
