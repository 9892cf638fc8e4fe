package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Session   SessionConfig
	Shopify   ShopifyConfig
	Ops       OpsConfig
	RateLimit RateLimitConfig
	Retention RetentionConfig
	Cache     CacheConfig
	Cron      CronConfig
	Audit     AuditConfig
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
	Env          string `envconfig:"SHOPLENS_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPLENS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPLENS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPLENS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPLENS_DB_DSN"`
	Driver string `envconfig:"SHOPLENS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPLENS_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPLENS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPLENS_DB_USER"`
	LegacyPassword string `envconfig:"SHOPLENS_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPLENS_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPLENS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPLENS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPLENS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPLENS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPLENS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"SHOPLENS_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPLENS_REDIS_URL"`
	Address      string        `envconfig:"SHOPLENS_REDIS_ADDRESS"`
	Password     string        `envconfig:"SHOPLENS_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPLENS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPLENS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPLENS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPLENS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPLENS_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"SHOPLENS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig governs the signed session cookie and server-side lifecycle.
type SessionConfig struct {
	CookieName    string        `envconfig:"SHOPLENS_SESSION_COOKIE_NAME" default:"shoplens_session"`
	CookieDomain  string        `envconfig:"SHOPLENS_SESSION_COOKIE_DOMAIN"`
	CookieSecure  bool          `envconfig:"SHOPLENS_SESSION_COOKIE_SECURE" default:"true"`
	Secret        string        `envconfig:"SHOPLENS_SESSION_SECRET" required:"true"`
	Issuer        string        `envconfig:"SHOPLENS_SESSION_ISSUER" default:"shoplens"`
	TTL           time.Duration `envconfig:"SHOPLENS_SESSION_TTL" default:"720h"`
	IdleTimeout   time.Duration `envconfig:"SHOPLENS_SESSION_IDLE_TIMEOUT" default:"72h"`
	RetentionDays int           `envconfig:"SHOPLENS_SESSION_RETENTION_DAYS" default:"30"`
}

type ShopifyConfig struct {
	APIKey       string `envconfig:"SHOPLENS_SHOPIFY_API_KEY"`
	AppURL       string `envconfig:"SHOPLENS_APP_URL" default:"http://localhost:3000"`
	AuthorizeURL string `envconfig:"SHOPLENS_SHOPIFY_AUTHORIZE_URL" default:"https://{shop}/admin/oauth/authorize"`
	Scopes       string `envconfig:"SHOPLENS_SHOPIFY_SCOPES" default:"read_products,read_orders"`
}

// OpsConfig protects the internal ops surface with a pre-hashed key.
type OpsConfig struct {
	KeyHash          string `envconfig:"SHOPLENS_OPS_KEY_HASH"`
	ArgonMemoryKB    int    `envconfig:"SHOPLENS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int    `envconfig:"SHOPLENS_ARGON_TIME" default:"3"`
	ArgonParallelism int    `envconfig:"SHOPLENS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int    `envconfig:"SHOPLENS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int    `envconfig:"SHOPLENS_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	InstallWindow    time.Duration `envconfig:"SHOPLENS_RATE_LIMIT_INSTALL_WINDOW" default:"1m"`
	InstallShopLimit int           `envconfig:"SHOPLENS_RATE_LIMIT_INSTALL_SHOP_LIMIT" default:"5"`
	InstallIPLimit   int           `envconfig:"SHOPLENS_RATE_LIMIT_INSTALL_IP_LIMIT" default:"20"`
}

type RetentionConfig struct {
	NotificationDays int `envconfig:"SHOPLENS_RETENTION_NOTIFICATION_DAYS" default:"30"`
	AuditDays        int `envconfig:"SHOPLENS_RETENTION_AUDIT_DAYS" default:"90"`
}

type CacheConfig struct {
	DashboardTTL time.Duration `envconfig:"SHOPLENS_CACHE_DASHBOARD_TTL" default:"60s"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"SHOPLENS_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"SHOPLENS_CRON_LOCK_TTL" default:"2h"`
}

// AuditConfig carries the key used to pseudonymize client IPs before storage.
type AuditConfig struct {
	IPHashKey string `envconfig:"SHOPLENS_AUDIT_IP_HASH_KEY" required:"true"`
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
