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

type orderDoc struct {
	ID         string    `bson:"_id"`
	Status     int       `bson:"status"`
	CustomerID string    `bson:"customer_id"`
	CourierID  *string   `bson:"courier_id"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func (d orderDoc) toDomain() *domain.Order {
	return &domain.Order{
		ID:         d.ID,
		Status:     domain.OrderStatus(d.Status),
		CustomerID: d.CustomerID,
		CourierID:  d.CourierID,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// OrderStore keeps orders in a single collection.
type OrderStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewOrderStore creates a new OrderStore.
func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{coll: db.Collection(OrdersCollection), now: time.Now}
}

// Get returns the order or nil when absent.
func (s *OrderStore) Get(ctx context.Context, id string) (*domain.Order, error) {
	var doc orderDoc
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %q: %w", id, err)
	}
	return doc.toDomain(), nil
}

// ApproveIfPaid atomically moves a payment-confirmed order to approved.
// It returns nil when nothing matched.
func (s *OrderStore) ApproveIfPaid(ctx context.Context, id, courierID string) (*domain.Order, error) {
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "status", Value: int(domain.StatusPaymentConfirmed)},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: int(domain.StatusApproved)},
		{Key: "courier_id", Value: courierID},
		{Key: "updated_at", Value: s.now().UTC()},
	}}}

	var doc orderDoc
	err := s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("approve order %q: %w", id, err)
	}
	return doc.toDomain(), nil
}

// UpsertIntake inserts or advances an order. An existing order whose status
// is not below both the incoming status and approved is left unchanged and
// false is returned.
func (s *OrderStore) UpsertIntake(ctx context.Context, o *domain.Order) (bool, error) {
	ceiling := o.Status
	if ceiling > domain.StatusApproved {
		ceiling = domain.StatusApproved
	}
	now := s.now().UTC()
	created := o.CreatedAt
	if created.IsZero() {
		created = now
	}

	filter := bson.D{
		{Key: "_id", Value: o.ID},
		{Key: "status", Value: bson.D{{Key: "$lt", Value: int(ceiling)}}},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "status", Value: int(o.Status)},
			{Key: "updated_at", Value: now},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "customer_id", Value: o.CustomerID},
			{Key: "courier_id", Value: nil},
			{Key: "created_at", Value: created},
		}},
	}
	res, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		// The filter missed an existing document and the upsert hit its _id.
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("upsert order %q: %w", o.ID, err)
	}
	return res.ModifiedCount > 0 || res.UpsertedCount > 0, nil
}
