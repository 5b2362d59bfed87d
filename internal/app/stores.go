package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"

	"service-shop-delivery/internal/config"
	"service-shop-delivery/internal/domain"
	"service-shop-delivery/internal/logx"
	"service-shop-delivery/internal/repository"
	"service-shop-delivery/internal/repository/mongostore"
	"service-shop-delivery/internal/service/notify"
	"service-shop-delivery/internal/service/orders"
	"service-shop-delivery/internal/service/verification"
)

// AccountStore is what both account backends provide.
type AccountStore interface {
	verification.AccountStore
	Approve(ctx context.Context, ref domain.AccountRef) (bool, error)
}

// Stores is the persistence layer selected by STORE_DRIVER.
type Stores struct {
	Accounts    AccountStore
	Orders      orders.OrderStore
	Records     notify.RecordStore
	DeadLetters notify.DeadLetterStore
}

func postgresStores(pool *pgxpool.Pool) *Stores {
	return &Stores{
		Accounts:    repository.NewAccountRepo(pool),
		Orders:      repository.NewOrderRepo(pool),
		Records:     repository.NewNotificationRepo(pool),
		DeadLetters: repository.NewDeadLetterRepo(pool),
	}
}

func mongoStores(db *mongo.Database) *Stores {
	return &Stores{
		Accounts:    mongostore.NewAccountStore(db),
		Orders:      mongostore.NewOrderStore(db),
		Records:     mongostore.NewNotificationStore(db),
		DeadLetters: mongostore.NewDeadLetterStore(db),
	}
}

type storeOpener struct {
	dbConnect    func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error)
	mongoConnect func(context.Context, logx.Logger, string, int, time.Duration) (*mongo.Client, error)
	migrate      func(context.Context, *pgxpool.Pool) (int, error)
}

func (o storeOpener) open(ctx context.Context, cfg *config.Config, logger logx.Logger, res *resources) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, err := o.mongoConnect(ctx, logger, cfg.Store.MongoURI, 10, time.Second)
		if err != nil {
			return nil, err
		}
		res.add("mongo", client.Disconnect)

		db := client.Database(cfg.Store.MongoDB)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		logger.Info("store selected", logx.String("driver", config.DriverMongo), logx.String("database", cfg.Store.MongoDB))
		return mongoStores(db), nil

	case config.DriverPostgres:
		pool, err := o.dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, err
		}
		res.add("postgres", func(context.Context) error {
			pool.Close()
			return nil
		})

		if cfg.DB.AutoMigrate {
			n, err := o.migrate(ctx, pool)
			if err != nil {
				return nil, err
			}
			logger.Info("migrations applied", logx.Int("count", n))
		}
		logger.Info("store selected", logx.String("driver", config.DriverPostgres))
		return postgresStores(pool), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
