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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Media        MediaConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	ActivityLog  ActivityLogConfig
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
	Env          string `envconfig:"KODACARD_APP_ENV" required:"true"`
	Port         string `envconfig:"KODACARD_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KODACARD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KODACARD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KODACARD_DB_DSN"`
	Driver string `envconfig:"KODACARD_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KODACARD_DB_HOST"`
	LegacyPort     int    `envconfig:"KODACARD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KODACARD_DB_USER"`
	LegacyPassword string `envconfig:"KODACARD_DB_PASSWORD"`
	LegacyName     string `envconfig:"KODACARD_DB_NAME"`
	LegacySSLMode  string `envconfig:"KODACARD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KODACARD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KODACARD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KODACARD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KODACARD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KODACARD_REDIS_URL" required:"true"`
	Password     string        `envconfig:"KODACARD_REDIS_PASSWORD"`
	DB           int           `envconfig:"KODACARD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KODACARD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KODACARD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KODACARD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KODACARD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KODACARD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"KODACARD_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"KODACARD_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"KODACARD_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"KODACARD_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"KODACARD_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KODACARD_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KODACARD_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KODACARD_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KODACARD_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KODACARD_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"KODACARD_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"KODACARD_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"KODACARD_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"KODACARD_GCS_BUCKET_NAME"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"KODACARD_MAX_UPLOAD_MB" default:"20"`
}

type PubSubConfig struct {
	DomainEventsTopic string `envconfig:"KODACARD_PUBSUB_DOMAIN_EVENTS_TOPIC" default:"kc-domain-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"KODACARD_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"KODACARD_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"KODACARD_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type ActivityLogConfig struct {
	BufferSize int `envconfig:"KODACARD_ACTIVITY_LOG_BUFFER" default:"256"`
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
