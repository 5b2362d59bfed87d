package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/dig"

	"service-shop-delivery/internal/config"
	"service-shop-delivery/internal/gateway/email"
	"service-shop-delivery/internal/gateway/push"
	"service-shop-delivery/internal/http/adminserver"
	"service-shop-delivery/internal/http/handlers"
	"service-shop-delivery/internal/http/middleware/ratelimit"
	"service-shop-delivery/internal/http/router"
	"service-shop-delivery/internal/jobs"
	"service-shop-delivery/internal/logx"
	"service-shop-delivery/internal/repository"
	"service-shop-delivery/internal/service/approval"
	"service-shop-delivery/internal/service/notify"
	"service-shop-delivery/internal/service/orders"
	"service-shop-delivery/internal/service/verification"
	"service-shop-delivery/internal/transport/kafka"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	stores    storeOpener
	loadCfg   func() (*config.Config, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder.
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		stores: storeOpener{
			dbConnect:    connectDbWithRetry,
			mongoConnect: connectMongoWithRetry,
			migrate:      repository.Migrate,
		},
		loadCfg:   config.Load,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the postgres connection function.
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.stores.dbConnect = fn
	}
	return b
}

// WithMongoConnect sets the mongo connection function.
func (b *ContainerBuilder) WithMongoConnect(
	fn func(context.Context, logx.Logger, string, int, time.Duration) (*mongo.Client, error),
) *ContainerBuilder {
	if fn != nil {
		b.stores.mongoConnect = fn
	}
	return b
}

// WithMigrate sets the schema migration function.
func (b *ContainerBuilder) WithMigrate(fn func(context.Context, *pgxpool.Pool) (int, error)) *ContainerBuilder {
	if fn != nil {
		b.stores.migrate = fn
	}
	return b
}

// WithConfig replaces config loading.
func (b *ContainerBuilder) WithConfig(fn func() (*config.Config, error)) *ContainerBuilder {
	if fn != nil {
		b.loadCfg = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function.
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds the API container.
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx, false)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// MustBuildWorker builds the worker container: order intake and redelivery.
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.build(ctx, true)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context, worker bool) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, b.loadCfg); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerStores(container, b.stores); err != nil {
		return nil, fmt.Errorf("stores: %w", err)
	}
	if err := registerNotify(container); err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if worker {
		if err := registerWorker(container); err != nil {
			return nil, fmt.Errorf("worker: %w", err)
		}
		return container, nil
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds the API container with defaults.
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds the worker container with defaults.
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context, loadCfg func() (*config.Config, error)) error {
	return provideAll(container,
		func() context.Context { return ctx },
		loadCfg,
		NewLogger,
		newMetrics,
		newResources,
	)
}

func registerStores(container *dig.Container, opener storeOpener) error {
	return provideAll(container,
		func(ctx context.Context, cfg *config.Config, logger logx.Logger, res *resources) (*Stores, error) {
			return opener.open(ctx, cfg, logger, res)
		},
	)
}

func newEmailSender(cfg *config.Config, logger logx.Logger) verification.EmailSender {
	if cfg.SMTP.Host == "" {
		logger.Warn("smtp host not set, emails are logged only")
		return email.NewLogSender(logger)
	}
	return email.NewMailer(email.Config{
		Host:    cfg.SMTP.Host,
		Port:    cfg.SMTP.Port,
		User:    cfg.SMTP.User,
		Pass:    cfg.SMTP.Pass,
		From:    cfg.SMTP.From,
		Timeout: cfg.SMTP.Timeout,
	}, logger)
}

func newPushGateway(cfg *config.Config, logger logx.Logger, m *Metrics, res *resources) (notify.Gateway, error) {
	if !cfg.Kafka.Enabled() {
		logger.Warn("kafka brokers not set, push notifications are logged only")
		return push.NewLogGateway(logger), nil
	}
	producer, err := push.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Notify.Timeout)
	if err != nil {
		return nil, err
	}
	kg := push.NewKafkaGateway(producer, cfg.Kafka.PushTopic)
	res.add("kafka producer", func(context.Context) error { return kg.Close() })

	return push.NewRetryingGateway(kg, logger, m.GatewayRetries, push.RetryConfig{
		MaxAttempts: cfg.Notify.MaxAttempts,
		BaseDelay:   cfg.Notify.BaseDelay,
		MaxDelay:    cfg.Notify.MaxDelay,
	}), nil
}

// notifier bundles the selected delivery mode. queue is nil in sync mode.
type notifier struct {
	orders.Notifier
	queue *notify.Queue
}

func registerNotify(container *dig.Container) error {
	return provideAll(container,
		newPushGateway,
		func(s *Stores, gw notify.Gateway, m *Metrics, logger logx.Logger) *notify.Dispatcher {
			return notify.NewDispatcher(s.Records, gw, m.Notifications, logger)
		},
		func(cfg *config.Config, d *notify.Dispatcher, s *Stores, m *Metrics, logger logx.Logger) *notify.Queue {
			return notify.NewQueue(d, s.DeadLetters, notify.QueueOptions{
				Workers:      cfg.Notify.Workers,
				Size:         cfg.Notify.QueueSize,
				Timeout:      cfg.Notify.Timeout,
				DeadLettered: m.DeadLettered,
				Logger:       logger,
			})
		},
		func(cfg *config.Config, d *notify.Dispatcher, q *notify.Queue, logger logx.Logger) notifier {
			if cfg.Notify.Mode == config.NotifySync {
				return notifier{Notifier: notify.NewSyncNotifier(d, cfg.Notify.Timeout, logger)}
			}
			return notifier{Notifier: q, queue: q}
		},
	)
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		newEmailSender,
		func(cfg *config.Config, s *Stores, logger logx.Logger) *approval.Gate {
			return approval.NewGate(s.Accounts, cfg.OperationTimeout, logger)
		},
		func(cfg *config.Config, s *Stores, gate *approval.Gate, mailer verification.EmailSender, m *Metrics, logger logx.Logger) *verification.Service {
			return verification.NewService(verification.Deps{
				Store:    s.Accounts,
				Approver: gate,
				Mailer:   mailer,
				Codes:    verification.RandomCodes{},
				Hasher:   verification.BcryptHasher{},
			}, verification.Options{
				OperationTimeout: cfg.OperationTimeout,
				EmailTimeout:     cfg.SMTP.Timeout,
				CodesIssued:      m.CodesIssued,
				Logger:           logger,
			})
		},
		func(cfg *config.Config, s *Stores, n notifier, m *Metrics, logger logx.Logger) *orders.StateMachine {
			return orders.NewStateMachine(s.Orders, n, cfg.OperationTimeout, m.OrderApprovals, logger)
		},
		func(cfg *config.Config, s *Stores, logger logx.Logger) *orders.Intake {
			return orders.NewIntake(s.Orders, cfg.OperationTimeout, logger)
		},
	)
}

// adminServer serves metrics and pprof. It is nil when disabled.
type adminServer struct {
	*http.Server
}

func newServer(port int, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func newThrottle(cfg *config.Config, m *Metrics, logger logx.Logger) func(http.Handler) http.Handler {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	limiter := ratelimit.NewTokenBucketLimiter(nil, ratelimit.Config{
		Rate:       cfg.RateLimit.Rate,
		Burst:      cfg.RateLimit.Burst,
		TTL:        cfg.RateLimit.TTL,
		MaxBuckets: cfg.RateLimit.MaxBuckets,
	})
	return ratelimit.New(logger, m.RateLimitExceeded, limiter, nil).Handler()
}

func registerHTTP(container *dig.Container) error {
	routerProvider := func(
		logger logx.Logger,
		m *Metrics,
		base *handlers.Handlers,
		accounts *handlers.AccountHandler,
		ordersH *handlers.OrderHandler,
		throttle func(http.Handler) http.Handler,
	) http.Handler {
		return router.New(router.Deps{
			Logger:   logger,
			Base:     base,
			Accounts: accounts,
			Orders:   ordersH,
			Metrics:  m.HTTP,
			Throttle: throttle,
		})
	}
	adminProvider := func(cfg *config.Config, m *Metrics) adminServer {
		if cfg.Admin.Port == 0 {
			return adminServer{}
		}
		h := adminserver.Handler(adminserver.Config{User: cfg.Admin.User, Pass: cfg.Admin.Pass}, m.Registry)
		return adminServer{Server: newServer(cfg.Admin.Port, h)}
	}
	return provideAll(container,
		handlers.New,
		handlers.NewAccountUsecase,
		handlers.NewAccountHandler,
		handlers.NewOrderUsecase,
		handlers.NewOrderHandler,
		newThrottle,
		routerProvider,
		func(cfg *config.Config, h http.Handler) *http.Server { return newServer(cfg.Port, h) },
		adminProvider,
	)
}

var newConsumer = kafka.NewConsumer

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, logger logx.Logger, intake *orders.Intake, res *resources) (*kafka.Consumer, error) {
			c, err := newConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.OrdersTopic, intake.Handle)
			if err != nil {
				return nil, err
			}
			if c != nil {
				res.add("kafka consumer", func(context.Context) error { return c.Close() })
			}
			return c, nil
		},
		func(cfg *config.Config, q *notify.Queue, logger logx.Logger) *jobs.RedeliveryJob {
			return jobs.NewRedeliveryJob(q, cfg.Notify.RedeliverySchedule, cfg.Notify.RedeliveryBatch, cfg.Notify.Timeout, logger)
		},
	)
}
