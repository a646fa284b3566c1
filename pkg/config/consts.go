package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names.
const EnvPrefix = "KODACARD"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv                 = "KODACARD_APP_ENV"
	EnvPort                   = "KODACARD_APP_PORT"
	EnvDBDSN                  = "KODACARD_DB_DSN"
	EnvDBHost                 = "KODACARD_DB_HOST"
	EnvDBUser                 = "KODACARD_DB_USER"
	EnvDBName                 = "KODACARD_DB_NAME"
	EnvRedisURL               = "KODACARD_REDIS_URL"
	EnvJWTSecret              = "KODACARD_JWT_SECRET"
	EnvJWTIssuer              = "KODACARD_JWT_ISSUER"
	EnvJWTExpMins             = "KODACARD_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "KODACARD_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
