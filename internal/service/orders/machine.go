package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"service-shop-delivery/internal/apperr"
	"service-shop-delivery/internal/config"
	"service-shop-delivery/internal/domain"
	"service-shop-delivery/internal/logx"
	"service-shop-delivery/internal/service/notify"
)

// Texts sent after an order is approved.
const (
	customerTitle = "success"
	customerBody  = "Your order is on the way"
	customerPage  = "none"
	customerView  = "refreshorderpending"

	broadcastTitle = "warning"
	broadcastBody  = "The Order Has been Approved by delivery"
)

// StateMachine owns order status transitions.
type StateMachine struct {
	store            OrderStore
	notifier         Notifier
	operationTimeout time.Duration
	approvals        *prometheus.CounterVec
	logger           logx.Logger
}

// NewStateMachine creates a StateMachine. approvals may be nil.
func NewStateMachine(store OrderStore, notifier Notifier, timeout time.Duration, approvals *prometheus.CounterVec, logger logx.Logger) *StateMachine {
	if timeout <= 0 {
		timeout = config.DefaultOperationTimeout()
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &StateMachine{
		store:            store,
		notifier:         notifier,
		operationTimeout: timeout,
		approvals:        approvals,
		logger:           logger,
	}
}

func (m *StateMachine) observe(result string) {
	if m.approvals != nil {
		m.approvals.WithLabelValues(result).Inc()
	}
}

// ApproveOrder moves the order from payment-confirmed to approved, assigns
// courierID and then notifies the customer, the services channel and the
// delivery channel. Exactly one of several concurrent calls succeeds.
//
// When the notifier fails the order stays approved and the error is external.
func (m *StateMachine) ApproveOrder(ctx context.Context, orderID, customerID, courierID string) error {
	orderID = strings.TrimSpace(orderID)
	customerID = strings.TrimSpace(customerID)
	courierID = strings.TrimSpace(courierID)
	if orderID == "" || customerID == "" || courierID == "" {
		m.observe("invalid")
		return fmt.Errorf("order, customer and courier ids are required: %w", apperr.ErrInvalid)
	}

	if err := m.transition(ctx, orderID, courierID); err != nil {
		m.observe(resultOf(err))
		return err
	}
	m.observe("approved")

	m.logger.Info("order approved",
		logx.String("event", "order_approved"),
		logx.String("order_id", orderID),
		logx.String("customer_id", customerID),
		logx.String("courier_id", courierID),
	)

	msgs := []notify.Message{
		notify.UserMessage(customerID, customerTitle, customerBody, domain.UserTopic(customerID), customerPage, customerView),
		notify.BroadcastMessage(domain.TopicServices, broadcastTitle, broadcastBody),
		notify.BroadcastMessage(domain.TopicDelivery, broadcastTitle, broadcastBody+" "+courierID),
	}
	if err := m.notifier.Notify(ctx, msgs...); err != nil {
		m.logger.Warn("order approved but notification failed",
			logx.String("order_id", orderID),
			logx.Err(err),
		)
		if apperr.KindOf(err) != apperr.KindExternal {
			err = apperr.External("notify order approval", err)
		}
		return fmt.Errorf("order %s approved: %w", orderID, err)
	}
	return nil
}

func (m *StateMachine) transition(ctx context.Context, orderID, courierID string) error {
	ctx, cancel := context.WithTimeout(ctx, m.operationTimeout)
	defer cancel()

	o, err := m.store.ApproveIfPaid(ctx, orderID, courierID)
	if err != nil {
		return err
	}
	if o != nil {
		return nil
	}

	// The conditional update matched nothing; find out why.
	cur, err := m.store.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if cur == nil {
		return fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
	}
	return &apperr.StateConflictError{
		Entity:   "Order",
		ID:       orderID,
		Actual:   int(cur.Status),
		Expected: int(domain.StatusPaymentConfirmed),
	}
}

func resultOf(err error) string {
	var sc *apperr.StateConflictError
	switch {
	case errors.As(err, &sc):
		return "state_conflict"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
