package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"service-shop-delivery/internal/domain"
)

type notificationDoc struct {
	ID           string    `bson:"_id"`
	Title        string    `bson:"title"`
	Body         string    `bson:"body"`
	TargetUserID string    `bson:"target_user_id"`
	Topic        string    `bson:"topic"`
	PageID       string    `bson:"page_id"`
	PageName     string    `bson:"page_name"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d notificationDoc) toDomain() domain.NotificationRecord {
	return domain.NotificationRecord{
		ID:           d.ID,
		Title:        d.Title,
		Body:         d.Body,
		TargetUserID: d.TargetUserID,
		Topic:        domain.Topic(d.Topic),
		PageID:       d.PageID,
		PageName:     d.PageName,
		CreatedAt:    d.CreatedAt,
	}
}

// NotificationStore persists user notifications.
type NotificationStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewNotificationStore creates a new NotificationStore.
func NewNotificationStore(db *mongo.Database) *NotificationStore {
	return &NotificationStore{coll: db.Collection(NotificationsCollection), now: time.Now}
}

// Insert stores a notification record. An already stored ID is a no-op.
func (s *NotificationStore) Insert(ctx context.Context, n *domain.NotificationRecord) error {
	n.CreatedAt = s.now().UTC()
	_, err := s.coll.InsertOne(ctx, notificationDoc{
		ID:           n.ID,
		Title:        n.Title,
		Body:         n.Body,
		TargetUserID: n.TargetUserID,
		Topic:        string(n.Topic),
		PageID:       n.PageID,
		PageName:     n.PageName,
		CreatedAt:    n.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		var existing notificationDoc
		if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: n.ID}}).Decode(&existing); err != nil {
			return fmt.Errorf("load notification %q: %w", n.ID, err)
		}
		n.CreatedAt = existing.CreatedAt
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListForUser returns the newest records addressed to userID.
func (s *NotificationStore) ListForUser(ctx context.Context, userID string, limit int) ([]domain.NotificationRecord, error) {
	cur, err := s.coll.Find(ctx, bson.D{{Key: "target_user_id", Value: userID}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	var docs []notificationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	out := make([]domain.NotificationRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
