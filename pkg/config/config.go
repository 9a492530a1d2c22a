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
	Embeddings    EmbeddingsConfig
	OpenFoodFacts OpenFoodFactsConfig
	Search        SearchConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Embeddings.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FORK_APP_ENV" required:"true"`
	Port         string `envconfig:"FORK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FORK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FORK_LOG_WARN_STACK" default:"false"`
	// CORSOrigins is a comma separated allow list.
	CORSOrigins []string `envconfig:"FORK_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FORK_DB_DSN"`
	Driver string `envconfig:"FORK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FORK_POSTGRES_HOST"`
	LegacyPort     int    `envconfig:"FORK_POSTGRES_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FORK_POSTGRES_USER"`
	LegacyPassword string `envconfig:"FORK_POSTGRES_PASSWORD"`
	LegacyName     string `envconfig:"FORK_POSTGRES_DB_NAME"`
	LegacySSLMode  string `envconfig:"FORK_POSTGRES_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FORK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FORK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FORK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FORK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FORK_REDIS_URL"`
	Address      string        `envconfig:"FORK_REDIS_ADDR"`
	Password     string        `envconfig:"FORK_REDIS_PASSWORD"`
	DB           int           `envconfig:"FORK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FORK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FORK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FORK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FORK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FORK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FORK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FORK_JWT_ISSUER" default:"fork-backend"`
	ExpirationMinutes      int    `envconfig:"FORK_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"FORK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FORK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FORK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FORK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FORK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FORK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FORK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FORK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FORK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FORK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FORK_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FORK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FORK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FORK_AUTO_MIGRATE" default:"false"`
}

type EmbeddingsConfig struct {
	Provider   string `envconfig:"FORK_EMBEDDING_PROVIDER" default:"openai"`
	APIKey     string `envconfig:"FORK_OPENAI_API_KEY"`
	Model      string `envconfig:"FORK_EMBEDDING_MODEL" default:"text-embedding-3-small"`
	Dimensions int    `envconfig:"FORK_EMBEDDING_DIMENSIONS" default:"384"`
	Workers    int    `envconfig:"FORK_EMBEDDING_WORKERS" default:"4"`
}

func (e EmbeddingsConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(e.Provider)) {
	case EmbeddingProviderOpenAI:
		if e.APIKey == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvOpenAIAPIKey, EnvEmbeddingProvider, EmbeddingProviderOpenAI)
		}
	case EmbeddingProviderHash:
	default:
		return fmt.Errorf("unsupported %s %q", EnvEmbeddingProvider, e.Provider)
	}
	if e.Dimensions <= 0 {
		return fmt.Errorf("%s must be positive", EnvEmbeddingDimensions)
	}
	return nil
}

type OpenFoodFactsConfig struct {
	BaseURL   string        `envconfig:"FORK_OFF_BASE_URL" default:"https://world.openfoodfacts.org"`
	UserAgent string        `envconfig:"FORK_OFF_USER_AGENT" default:"fork-backend/1.0"`
	Country   string        `envconfig:"FORK_OFF_COUNTRY" default:"de"`
	Timeout   time.Duration `envconfig:"FORK_OFF_TIMEOUT" default:"8s"`
}

type SearchConfig struct {
	DefaultLimit  int     `envconfig:"FORK_SEARCH_DEFAULT_LIMIT" default:"20"`
	MinSimilarity float64 `envconfig:"FORK_SEARCH_MIN_SIMILARITY" default:"0.3"`
}

type CronConfig struct {
	Interval          time.Duration `envconfig:"FORK_CRON_INTERVAL" default:"1h"`
	LockTTL           time.Duration `envconfig:"FORK_CRON_LOCK_TTL" default:"10m"`
	BackfillBatchSize int           `envconfig:"FORK_EMBEDDING_BACKFILL_BATCH" default:"200"`
}

func (db *DBConfig) ensureDSN(sqlite bool) error {
	if db.DSN != "" {
		return nil
	}
	if sqlite {
		db.Driver = DriverSQLite
		db.DSN = "file:fork.db?cache=shared"
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
