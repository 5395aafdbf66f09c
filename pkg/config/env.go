package config

const EnvPrefix = "CAEC"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultSQLiteDSN = "caec.db"

	minSessionSecretLen = 16
)

const (
	EnvAppEnv        = "CAEC_APP_ENV"
	EnvPort          = "CAEC_APP_PORT"
	EnvLogLevel      = "CAEC_LOG_LEVEL"
	EnvDBDriver      = "CAEC_DB_DRIVER"
	EnvDBDSN         = "CAEC_DB_DSN"
	EnvDBHost        = "CAEC_DB_HOST"
	EnvDBUser        = "CAEC_DB_USER"
	EnvDBName        = "CAEC_DB_NAME"
	EnvDBPassword    = "CAEC_DB_PASSWORD"
	EnvRedisURL      = "CAEC_REDIS_URL"
	EnvSessionSecret = "CAEC_SESSION_SECRET"
	EnvSessionName   = "CAEC_SESSION_NAME"
	EnvCORSOrigins   = "CAEC_CORS_ALLOWED_ORIGINS"
	EnvAutoMigrate   = "CAEC_AUTO_MIGRATE"
	EnvRetentionDays = "CAEC_SENSOR_RETENTION_DAYS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
