package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is shared by every CardBinder environment variable.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside of struct tags.
const (
	EnvAppEnv     = "CARDBINDER_APP_ENV"
	EnvPort       = "CARDBINDER_APP_PORT"
	EnvDBDSN      = "CARDBINDER_DB_DSN"
	EnvDBHost     = "CARDBINDER_DB_HOST"
	EnvDBUser     = "CARDBINDER_DB_USER"
	EnvDBName     = "CARDBINDER_DB_NAME"
	EnvRedisURL   = "CARDBINDER_REDIS_URL"
	EnvJWTSecret  = "CARDBINDER_JWT_SECRET"
	EnvJWTIssuer  = "CARDBINDER_JWT_ISSUER"
	EnvJWTExpMins = "CARDBINDER_JWT_EXPIRATION_MINUTES"
	EnvAdminKey   = "CARDBINDER_ADMIN_API_SECRET"

	EnvGCPProjectID         = "CARDBINDER_GCP_PROJECT_ID"
	EnvPubSubDomainTopic    = "CARDBINDER_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub      = "CARDBINDER_PUBSUB_DOMAIN_SUBSCRIPTION"
	EnvPubSubNotifTopic     = "CARDBINDER_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotifSub       = "CARDBINDER_PUBSUB_NOTIFICATION_SUBSCRIPTION"
	EnvCleanupEmergencyMins = "CARDBINDER_CLEANUP_EMERGENCY_OVERDUE_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	Admin         AdminConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Cleanup       CleanupConfig
	Offers        OffersConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Stripe        StripeConfig
	Email         EmailConfig
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
	Env          string `envconfig:"CARDBINDER_APP_ENV" required:"true"`
	Port         string `envconfig:"CARDBINDER_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"CARDBINDER_APP_BASE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"CARDBINDER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARDBINDER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CARDBINDER_SERVICE_KIND" default:"api"`
}

// AdminConfig guards operator-triggered routes via the x-admin-secret header.
type AdminConfig struct {
	Secret string `envconfig:"CARDBINDER_ADMIN_API_SECRET"`
}

type DBConfig struct {
	DSN    string `envconfig:"CARDBINDER_DB_DSN"`
	Driver string `envconfig:"CARDBINDER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CARDBINDER_DB_HOST"`
	LegacyPort     int    `envconfig:"CARDBINDER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARDBINDER_DB_USER"`
	LegacyPassword string `envconfig:"CARDBINDER_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARDBINDER_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARDBINDER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARDBINDER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARDBINDER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARDBINDER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARDBINDER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARDBINDER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CARDBINDER_REDIS_ADDR"`
	Password     string        `envconfig:"CARDBINDER_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARDBINDER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARDBINDER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARDBINDER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARDBINDER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARDBINDER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARDBINDER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CARDBINDER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CARDBINDER_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CARDBINDER_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CARDBINDER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CARDBINDER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CARDBINDER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CARDBINDER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CARDBINDER_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CARDBINDER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CARDBINDER_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CARDBINDER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CARDBINDER_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CARDBINDER_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CARDBINDER_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CARDBINDER_AUTO_MIGRATE" default:"false"`
}

// CleanupConfig tunes the listing lifecycle sweeps.
type CleanupConfig struct {
	Interval                time.Duration `envconfig:"CARDBINDER_CLEANUP_INTERVAL" default:"2h"`
	BatchSize               int           `envconfig:"CARDBINDER_CLEANUP_BATCH_SIZE" default:"500"`
	EmergencyOverdueMinutes int           `envconfig:"CARDBINDER_CLEANUP_EMERGENCY_OVERDUE_MINUTES" default:"180"`
	MaxDeletionsPerRun      int           `envconfig:"CARDBINDER_CLEANUP_MAX_DELETIONS" default:"50"`
}

// OffersConfig bounds offer amounts and expiry choices.
type OffersConfig struct {
	AbsoluteCeilingCents int64 `envconfig:"CARDBINDER_OFFERS_ABSOLUTE_CEILING_CENTS" default:"5000000"`
	DefaultExpiryHrs     int   `envconfig:"CARDBINDER_OFFERS_DEFAULT_EXPIRY_HOURS" default:"24"`
	PriceMultipleCap     int64 `envconfig:"CARDBINDER_OFFERS_PRICE_MULTIPLE_CAP" default:"2"`
	PremiumExpiryHrs     []int `envconfig:"CARDBINDER_OFFERS_PREMIUM_EXPIRY_HOURS" default:"24,48,72,168"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"CARDBINDER_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CARDBINDER_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"CARDBINDER_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CARDBINDER_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic              string `envconfig:"CARDBINDER_PUBSUB_DOMAIN_TOPIC" required:"true"`
	DomainSubscription       string `envconfig:"CARDBINDER_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
	NotificationTopic        string `envconfig:"CARDBINDER_PUBSUB_NOTIFICATION_TOPIC" default:"cb-notification-events"`
	NotificationSubscription string `envconfig:"CARDBINDER_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CARDBINDER_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CARDBINDER_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CARDBINDER_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type StripeConfig struct {
	APIKey string `envconfig:"CARDBINDER_STRIPE_API_KEY"`
	Env    string `envconfig:"CARDBINDER_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type EmailConfig struct {
	DefaultFrom string `envconfig:"CARDBINDER_EMAIL_FROM" default:"no-reply@cardbinder.app"`
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
