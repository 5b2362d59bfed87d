// Package mongostore is the MongoDB document-store backend. It mirrors the
// PostgreSQL repositories method for method.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"service-shop-delivery/internal/apperr"
	"service-shop-delivery/internal/domain"
)

// Collection names besides the per-kind account collections.
const (
	OrdersCollection        = "orders"
	NotificationsCollection = "notifications"
	DeadLettersCollection   = "notification_dead_letters"
)

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	for _, kind := range []domain.AccountKind{domain.KindCustomer, domain.KindCourier} {
		_, err := db.Collection(kind.Collection()).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "phone", Value: 1}}, Options: unique},
		})
		if err != nil {
			return fmt.Errorf("index %s: %w", kind.Collection(), err)
		}
	}
	_, err := db.Collection(NotificationsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "target_user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("index %s: %w", NotificationsCollection, err)
	}
	return nil
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func accountCollection(db *mongo.Database, kind domain.AccountKind) (*mongo.Collection, error) {
	name := kind.Collection()
	if name == "" {
		return nil, fmt.Errorf("account kind %q: %w", kind, apperr.ErrInvalid)
	}
	return db.Collection(name), nil
}
