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
	Session      SessionConfig
	CORS         CORSConfig
	Telemetry    TelemetryConfig
	Cron         CronConfig
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
	if err := cfg.Session.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CAEC_APP_ENV" required:"true"`
	Port         string `envconfig:"CAEC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CAEC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAEC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CAEC_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CAEC_DB_DSN"`
	Driver string `envconfig:"CAEC_DB_DRIVER" default:"sqlite"`

	LegacyHost     string `envconfig:"CAEC_DB_HOST"`
	LegacyPort     int    `envconfig:"CAEC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CAEC_DB_USER"`
	LegacyPassword string `envconfig:"CAEC_DB_PASSWORD"`
	LegacyName     string `envconfig:"CAEC_DB_NAME"`
	LegacySSLMode  string `envconfig:"CAEC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAEC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAEC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAEC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAEC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite one.
func (d DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(d.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"CAEC_REDIS_URL"`
	Address      string        `envconfig:"CAEC_REDIS_ADDR"`
	Password     string        `envconfig:"CAEC_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAEC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAEC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAEC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAEC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAEC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAEC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	Secret     string `envconfig:"CAEC_SESSION_SECRET" required:"true"`
	Name       string `envconfig:"CAEC_SESSION_NAME" default:"caec_session"`
	MaxAgeDays int    `envconfig:"CAEC_SESSION_MAX_AGE_DAYS" default:"30"`
	Secure     bool   `envconfig:"CAEC_SESSION_SECURE" default:"false"`
}

// MaxAge returns the remembered-session lifetime.
func (s SessionConfig) MaxAge() time.Duration {
	if s.MaxAgeDays <= 0 {
		return 0
	}
	return time.Duration(s.MaxAgeDays) * 24 * time.Hour
}

func (s SessionConfig) validate() error {
	if len(strings.TrimSpace(s.Secret)) < minSessionSecretLen {
		return fmt.Errorf("%s must be at least %d characters", EnvSessionSecret, minSessionSecretLen)
	}
	return nil
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CAEC_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5000"`
}

type TelemetryConfig struct {
	StreamInterval time.Duration `envconfig:"CAEC_TELEMETRY_STREAM_INTERVAL" default:"5s"`
}

type CronConfig struct {
	Interval            time.Duration `envconfig:"CAEC_CRON_INTERVAL" default:"24h"`
	SensorRetentionDays int           `envconfig:"CAEC_SENSOR_RETENTION_DAYS" default:"90"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CAEC_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
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
