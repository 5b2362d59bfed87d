package notify

import (
	"context"
	"errors"
	"time"

	"service-shop-delivery/internal/logx"
)

// SyncNotifier delivers messages inline. Every message is attempted even if
// an earlier one fails; all failures are returned joined.
type SyncNotifier struct {
	sender  Sender
	timeout time.Duration
	logger  logx.Logger
}

// NewSyncNotifier creates a SyncNotifier. A zero timeout leaves the caller's
// deadline in charge.
func NewSyncNotifier(sender Sender, timeout time.Duration, logger logx.Logger) *SyncNotifier {
	if logger == nil {
		logger = logx.Nop()
	}
	return &SyncNotifier{sender: sender, timeout: timeout, logger: logger}
}

// Notify dispatches msgs in order.
func (n *SyncNotifier) Notify(ctx context.Context, msgs ...Message) error {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	var errs []error
	for _, m := range msgs {
		if err := n.sender.Dispatch(ctx, m); err != nil {
			n.logger.Warn("notification failed",
				logx.String("kind", string(m.Kind)),
				logx.String("topic", string(m.Topic)),
				logx.Err(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
