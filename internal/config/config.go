package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Notification delivery modes.
const (
	NotifyAsync = "async"
	NotifySync  = "sync"
)

// Config stores service settings.
type Config struct {
	Port             int           `env:"PORT" envDefault:"8080"`
	OperationTimeout time.Duration `env:"OPERATION_TIMEOUT" envDefault:"3s"`

	Admin     Admin     `envPrefix:"ADMIN_"`
	DB        DB        `envPrefix:"POSTGRES_"`
	Store     Store     `envPrefix:"STORE_"`
	SMTP      SMTP      `envPrefix:"SMTP_"`
	Kafka     Kafka     `envPrefix:"KAFKA_"`
	Notify    Notify    `envPrefix:"NOTIFY_"`
	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`
	Log       Log       `envPrefix:"LOG_"`
}

// Admin configures the metrics/pprof listener. Port 0 disables it.
type Admin struct {
	Port int    `env:"PORT" envDefault:"9090"`
	User string `env:"USER"`
	Pass string `env:"PASS"`
}

// DB stores PostgreSQL connection settings.
type DB struct {
	Host        string `env:"HOST" envDefault:"127.0.0.1"`
	Port        int    `env:"PORT" envDefault:"5432"`
	User        string `env:"USER" envDefault:"myuser"`
	Pass        string `env:"PASSWORD" envDefault:"mypassword"`
	Name        string `env:"DB" envDefault:"shop_db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

// DSN builds a postgres connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Store selects the persistence backend.
type Store struct {
	Driver   string `env:"DRIVER" envDefault:"postgres"`
	MongoURI string `env:"MONGO_URI" envDefault:"mongodb://127.0.0.1:27017"`
	MongoDB  string `env:"MONGO_DB" envDefault:"shop"`
}

// SMTP configures the email sender. An empty host logs emails instead.
type SMTP struct {
	Host    string        `env:"HOST"`
	Port    int           `env:"PORT" envDefault:"1025"`
	User    string        `env:"USER"`
	Pass    string        `env:"PASS"`
	From    string        `env:"FROM" envDefault:"no-reply@shop.local"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

// Kafka configures the order intake consumer and the push producer.
type Kafka struct {
	Brokers     []string `env:"BROKERS" envSeparator:","`
	GroupID     string   `env:"GROUP_ID" envDefault:"shop-delivery-worker"`
	OrdersTopic string   `env:"ORDERS_TOPIC" envDefault:"orders.events"`
	PushTopic   string   `env:"PUSH_TOPIC" envDefault:"push.notifications"`
}

// Enabled reports whether brokers are configured.
func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

// Notify configures notification fan-out.
type Notify struct {
	Mode               string        `env:"MODE" envDefault:"async"`
	Workers            int           `env:"WORKERS" envDefault:"4"`
	QueueSize          int           `env:"QUEUE_SIZE" envDefault:"256"`
	Timeout            time.Duration `env:"TIMEOUT" envDefault:"5s"`
	MaxAttempts        int           `env:"MAX_ATTEMPTS" envDefault:"4"`
	BaseDelay          time.Duration `env:"BASE_DELAY" envDefault:"150ms"`
	MaxDelay           time.Duration `env:"MAX_DELAY" envDefault:"2s"`
	RedeliverySchedule string        `env:"REDELIVERY_SCHEDULE" envDefault:"@every 30s"`
	RedeliveryBatch    int           `env:"REDELIVERY_BATCH" envDefault:"50"`
}

// RateLimit configures throttling of code-issuing endpoints.
type RateLimit struct {
	Enabled    bool          `env:"ENABLED" envDefault:"false"`
	Rate       float64       `env:"RATE" envDefault:"0.2"`
	Burst      int           `env:"BURST" envDefault:"3"`
	TTL        time.Duration `env:"TTL" envDefault:"10m"`
	MaxBuckets int           `env:"MAX_BUCKETS" envDefault:"10000"`
}

// Log configures the logger backend.
type Log struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := pflag.CommandLine
	if fs.Lookup("port") == nil {
		fs.IntP("port", "p", cfg.Port, "port to listen on")
		fs.Int("admin-port", cfg.Admin.Port, "metrics/pprof port, 0 disables")
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if fs.Changed("port") {
		cfg.Port, _ = fs.GetInt("port")
	}
	if fs.Changed("admin-port") {
		cfg.Admin.Port, _ = fs.GetInt("admin-port")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Admin.Port < 0 || c.Admin.Port > 65535 {
		return fmt.Errorf("invalid admin port: %d", c.Admin.Port)
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		return fmt.Errorf("invalid postgres port: %d", c.DB.Port)
	}
	switch c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver)); c.Store.Driver {
	case DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}
	switch c.Notify.Mode = strings.ToLower(strings.TrimSpace(c.Notify.Mode)); c.Notify.Mode {
	case NotifyAsync, NotifySync:
	default:
		return fmt.Errorf("unknown notify mode: %q", c.Notify.Mode)
	}
	if c.Notify.Workers <= 0 || c.Notify.QueueSize <= 0 || c.Notify.MaxAttempts <= 0 {
		return fmt.Errorf("notify workers, queue size and attempts must be positive")
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = defaultOperationTimeout
	}
	return nil
}
