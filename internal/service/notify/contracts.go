//go:generate mockgen -source=contracts.go -destination=mocks_test.go -package=notify_test

package notify

import (
	"context"

	"service-shop-delivery/internal/domain"
)

// Gateway is the push/broadcast transport.
type Gateway interface {
	Broadcast(ctx context.Context, topic domain.Topic, title, body string) error
	RecordForUser(ctx context.Context, rec domain.NotificationRecord) error
}

// RecordStore persists user notifications. Insert is a no-op for an ID that
// is already stored.
type RecordStore interface {
	Insert(ctx context.Context, n *domain.NotificationRecord) error
}

// DeadLetterStore keeps messages that failed asynchronous delivery.
type DeadLetterStore interface {
	Save(ctx context.Context, d *domain.DeadLetter) error
	List(ctx context.Context, limit int) ([]domain.DeadLetter, error)
	MarkFailed(ctx context.Context, id, lastErr string) error
	Delete(ctx context.Context, id string) error
}

// Sender delivers a single message.
type Sender interface {
	Dispatch(ctx context.Context, msg Message) error
}
