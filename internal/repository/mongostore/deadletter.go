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

type deadLetterDoc struct {
	ID        string    `bson:"_id"`
	Payload   []byte    `bson:"payload"`
	Attempts  int       `bson:"attempts"`
	LastError string    `bson:"last_error"`
	CreatedAt time.Time `bson:"created_at"`
}

// DeadLetterStore keeps notifications that failed asynchronous delivery.
type DeadLetterStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewDeadLetterStore creates a new DeadLetterStore.
func NewDeadLetterStore(db *mongo.Database) *DeadLetterStore {
	return &DeadLetterStore{coll: db.Collection(DeadLettersCollection), now: time.Now}
}

// Save stores a dead letter.
func (s *DeadLetterStore) Save(ctx context.Context, d *domain.DeadLetter) error {
	d.CreatedAt = s.now().UTC()
	_, err := s.coll.InsertOne(ctx, deadLetterDoc{
		ID:        d.ID,
		Payload:   d.Payload,
		Attempts:  d.Attempts,
		LastError: d.LastError,
		CreatedAt: d.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("save dead letter: %w", err)
	}
	return nil
}

// List returns up to limit dead letters, oldest first.
func (s *DeadLetterStore) List(ctx context.Context, limit int) ([]domain.DeadLetter, error) {
	cur, err := s.coll.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	var docs []deadLetterDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode dead letters: %w", err)
	}
	out := make([]domain.DeadLetter, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.DeadLetter{
			ID: d.ID, Payload: d.Payload, Attempts: d.Attempts, LastError: d.LastError, CreatedAt: d.CreatedAt,
		})
	}
	return out, nil
}

// MarkFailed records another failed redelivery attempt.
func (s *DeadLetterStore) MarkFailed(ctx context.Context, id, lastErr string) error {
	_, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{
		{Key: "$inc", Value: bson.D{{Key: "attempts", Value: 1}}},
		{Key: "$set", Value: bson.D{{Key: "last_error", Value: lastErr}}},
	})
	if err != nil {
		return fmt.Errorf("mark dead letter %q: %w", id, err)
	}
	return nil
}

// Delete removes a dead letter.
func (s *DeadLetterStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("delete dead letter %q: %w", id, err)
	}
	return nil
}
