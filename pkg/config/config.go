package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Stripe       StripeConfig
	Outbox       OutboxConfig
	Fulfillment  FulfillmentConfig
	Settlement   SettlementConfig
	Eventing     EventingConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BEEZIO_APP_ENV" required:"true"`
	Port         string `envconfig:"BEEZIO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BEEZIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BEEZIO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BEEZIO_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BEEZIO_DB_DSN"`
	Driver string `envconfig:"BEEZIO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BEEZIO_DB_HOST"`
	LegacyPort     int    `envconfig:"BEEZIO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BEEZIO_DB_USER"`
	LegacyPassword string `envconfig:"BEEZIO_DB_PASSWORD"`
	LegacyName     string `envconfig:"BEEZIO_DB_NAME"`
	LegacySSLMode  string `envconfig:"BEEZIO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BEEZIO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BEEZIO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BEEZIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BEEZIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BEEZIO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BEEZIO_REDIS_ADDR"`
	Password     string        `envconfig:"BEEZIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"BEEZIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BEEZIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BEEZIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BEEZIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BEEZIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BEEZIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BEEZIO_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"BEEZIO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BEEZIO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	FulfillmentTopic        string `envconfig:"BEEZIO_PUBSUB_FULFILLMENT_TOPIC" required:"true"`
	FulfillmentSubscription string `envconfig:"BEEZIO_PUBSUB_FULFILLMENT_SUBSCRIPTION" required:"true"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"BEEZIO_STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"BEEZIO_STRIPE_WEBHOOK_SECRET" required:"true"`
	Env           string `envconfig:"BEEZIO_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BEEZIO_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BEEZIO_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BEEZIO_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FulfillmentConfig struct {
	OrdersURL      string        `envconfig:"BEEZIO_FULFILLMENT_ORDERS_URL"`
	DropshipURL    string        `envconfig:"BEEZIO_FULFILLMENT_DROPSHIP_URL"`
	RequestTimeout time.Duration `envconfig:"BEEZIO_FULFILLMENT_REQUEST_TIMEOUT" default:"10s"`
}

// SettlementConfig carries the marketplace fee schedule. Percent values
// are whole percents except ProcessingPercent, which keeps one decimal
// place as parts per thousand would obscure the familiar 2.9 figure.
type SettlementConfig struct {
	PlatformPercent         int64   `envconfig:"BEEZIO_SETTLEMENT_PLATFORM_PERCENT" default:"15"`
	SurchargeCents          int64   `envconfig:"BEEZIO_SETTLEMENT_SURCHARGE_CENTS" default:"100"`
	SurchargeThresholdCents int64   `envconfig:"BEEZIO_SETTLEMENT_SURCHARGE_THRESHOLD_CENTS" default:"2000"`
	ProcessingPercent       float64 `envconfig:"BEEZIO_SETTLEMENT_PROCESSING_PERCENT" default:"2.9"`
	ProcessingFixedCents    int64   `envconfig:"BEEZIO_SETTLEMENT_PROCESSING_FIXED_CENTS" default:"30"`
	ReferralPercent         int64   `envconfig:"BEEZIO_SETTLEMENT_REFERRAL_PERCENT" default:"5"`
	LegacyAskPercent        int64   `envconfig:"BEEZIO_SETTLEMENT_LEGACY_ASK_PERCENT" default:"70"`
	SellerHoldDays          int     `envconfig:"BEEZIO_SETTLEMENT_SELLER_HOLD_DAYS" default:"14"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BEEZIO_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	WebhookIdempotencyTTL time.Duration `envconfig:"BEEZIO_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
	OutboxIdempotencyTTL  time.Duration `envconfig:"BEEZIO_EVENTING_OUTBOX_IDEMPOTENCY_TTL" default:"168h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
