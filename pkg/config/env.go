package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "SECOSHA_APP_ENV"
	EnvPort     = "SECOSHA_APP_PORT"
	EnvLogLevel = "SECOSHA_LOG_LEVEL"

	EnvDBDSN  = "SECOSHA_DB_DSN"
	EnvDBHost = "SECOSHA_DB_HOST"
	EnvDBUser = "SECOSHA_DB_USER"
	EnvDBName = "SECOSHA_DB_NAME"

	EnvRedisURL = "SECOSHA_REDIS_URL"

	EnvJWTSecret              = "SECOSHA_JWT_SECRET"
	EnvJWTIssuer              = "SECOSHA_JWT_ISSUER"
	EnvJWTExpMins             = "SECOSHA_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SECOSHA_REFRESH_TOKEN_TTL_MINUTES"

	EnvGCPProjectID = "SECOSHA_GCP_PROJECT_ID"
	EnvGCSBucket    = "SECOSHA_GCS_BUCKET_NAME"

	EnvListingsQueryTimeout = "SECOSHA_LISTINGS_QUERY_TIMEOUT"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
