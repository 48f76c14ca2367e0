package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	Listings      ListingsConfig
	CORS          CORSConfig
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
	Env          string `envconfig:"SECOSHA_APP_ENV" required:"true"`
	Port         string `envconfig:"SECOSHA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SECOSHA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SECOSHA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"SECOSHA_DB_DSN"`
	Driver string `envconfig:"SECOSHA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SECOSHA_DB_HOST"`
	Port     int    `envconfig:"SECOSHA_DB_PORT" default:"5432"`
	User     string `envconfig:"SECOSHA_DB_USER"`
	Password string `envconfig:"SECOSHA_DB_PASSWORD"`
	Name     string `envconfig:"SECOSHA_DB_NAME"`
	SSLMode  string `envconfig:"SECOSHA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SECOSHA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SECOSHA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SECOSHA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SECOSHA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SECOSHA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SECOSHA_REDIS_ADDR"`
	Password     string        `envconfig:"SECOSHA_REDIS_PASSWORD"`
	DB           int           `envconfig:"SECOSHA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SECOSHA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SECOSHA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SECOSHA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SECOSHA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SECOSHA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SECOSHA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SECOSHA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SECOSHA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SECOSHA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SECOSHA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SECOSHA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SECOSHA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SECOSHA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SECOSHA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SECOSHA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SECOSHA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SECOSHA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SECOSHA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SECOSHA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SECOSHA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SECOSHA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SECOSHA_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SECOSHA_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SECOSHA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SECOSHA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"SECOSHA_GCS_BUCKET_NAME" default:"item-images"`
	PublicBaseURL string `envconfig:"SECOSHA_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
	CacheControl  string `envconfig:"SECOSHA_GCS_CACHE_CONTROL" default:"public, max-age=3600"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"SECOSHA_MAX_UPLOAD_MB" default:"10"`
}

// MaxUploadBytes converts the configured megabyte cap into bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

type ListingsConfig struct {
	QueryTimeout time.Duration `envconfig:"SECOSHA_LISTINGS_QUERY_TIMEOUT" default:"8s"`
	MaxResults   int           `envconfig:"SECOSHA_LISTINGS_MAX_RESULTS" default:"48"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SECOSHA_CORS_ALLOWED_ORIGINS" default:"*"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
