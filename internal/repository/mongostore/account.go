package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"service-shop-delivery/internal/apperr"
	"service-shop-delivery/internal/domain"
)

type accountDoc struct {
	ID               string    `bson:"_id"`
	Name             string    `bson:"name"`
	Email            string    `bson:"email"`
	Phone            string    `bson:"phone"`
	PasswordHash     string    `bson:"password_hash"`
	VerificationCode *string   `bson:"verification_code"`
	Approved         bool      `bson:"approved"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

func accountToDoc(a *domain.Account) accountDoc {
	return accountDoc{
		ID:               a.ID,
		Name:             a.Name,
		Email:            a.Email,
		Phone:            a.Phone,
		PasswordHash:     a.PasswordHash,
		VerificationCode: a.VerificationCode,
		Approved:         a.Approved,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func (d accountDoc) toDomain(kind domain.AccountKind) *domain.Account {
	return &domain.Account{
		ID:               d.ID,
		Kind:             kind,
		Name:             d.Name,
		Email:            d.Email,
		Phone:            d.Phone,
		PasswordHash:     d.PasswordHash,
		VerificationCode: d.VerificationCode,
		Approved:         d.Approved,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func refFilter(ref domain.AccountRef) bson.D {
	if ref.ID != "" {
		return bson.D{{Key: "_id", Value: ref.ID}}
	}
	return bson.D{{Key: "email", Value: ref.Email}}
}

// AccountStore keeps customers and couriers in one collection per kind.
type AccountStore struct {
	db  *mongo.Database
	now func() time.Time
}

// NewAccountStore creates a new AccountStore.
func NewAccountStore(db *mongo.Database) *AccountStore {
	return &AccountStore{db: db, now: time.Now}
}

func (s *AccountStore) findOne(ctx context.Context, kind domain.AccountKind, filter bson.D) (*domain.Account, error) {
	coll, err := accountCollection(s.db, kind)
	if err != nil {
		return nil, err
	}
	var doc accountDoc
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	return doc.toDomain(kind), nil
}

// Get returns the account addressed by ref or nil when absent.
func (s *AccountStore) Get(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	return s.findOne(ctx, ref.Kind, refFilter(ref))
}

// FindByEmailAndCode returns the account whose email and code both match, or nil.
func (s *AccountStore) FindByEmailAndCode(ctx context.Context, kind domain.AccountKind, email, code string) (*domain.Account, error) {
	return s.findOne(ctx, kind, bson.D{
		{Key: "email", Value: email},
		{Key: "verification_code", Value: code},
	})
}

// Create inserts a new unapproved account.
func (s *AccountStore) Create(ctx context.Context, a *domain.Account) error {
	coll, err := accountCollection(s.db, a.Kind)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	a.Approved = false
	a.CreatedAt, a.UpdatedAt = now, now
	if _, err := coll.InsertOne(ctx, accountToDoc(a)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s %q: %w", a.Kind, a.Email, apperr.ErrConflict)
		}
		return fmt.Errorf("create %s: %w", a.Kind, err)
	}
	return nil
}

func (s *AccountStore) updateOne(ctx context.Context, ref domain.AccountRef, set bson.D) (*domain.Account, error) {
	coll, err := accountCollection(s.db, ref.Kind)
	if err != nil {
		return nil, err
	}
	set = append(set, bson.E{Key: "updated_at", Value: s.now().UTC()})

	var doc accountDoc
	err = coll.FindOneAndUpdate(ctx, refFilter(ref), bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update %s: %w", ref.Kind, err)
	}
	return doc.toDomain(ref.Kind), nil
}

// SetCode overwrites the verification code and returns the updated account.
func (s *AccountStore) SetCode(ctx context.Context, ref domain.AccountRef, code string) (*domain.Account, error) {
	return s.updateOne(ctx, ref, bson.D{{Key: "verification_code", Value: code}})
}

// SetPassword replaces the password hash and returns the updated account.
func (s *AccountStore) SetPassword(ctx context.Context, ref domain.AccountRef, hash string) (*domain.Account, error) {
	return s.updateOne(ctx, ref, bson.D{{Key: "password_hash", Value: hash}})
}

// Approve marks the account approved and reports whether it exists.
func (s *AccountStore) Approve(ctx context.Context, ref domain.AccountRef) (bool, error) {
	coll, err := accountCollection(s.db, ref.Kind)
	if err != nil {
		return false, err
	}
	res, err := coll.UpdateOne(ctx, refFilter(ref), bson.D{{Key: "$set", Value: bson.D{
		{Key: "approved", Value: true},
		{Key: "updated_at", Value: s.now().UTC()},
	}}})
	if err != nil {
		return false, fmt.Errorf("approve %s: %w", ref.Kind, err)
	}
	return res.MatchedCount > 0, nil
}
