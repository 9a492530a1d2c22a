package config

// EnvPrefix is empty because every field carries its full FORK_* name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EmbeddingProviderOpenAI = "openai"
	EmbeddingProviderHash   = "hash"
)

const (
	EnvAppEnv              = "FORK_APP_ENV"
	EnvPort                = "FORK_APP_PORT"
	EnvDBDSN               = "FORK_DB_DSN"
	EnvDBHost              = "FORK_POSTGRES_HOST"
	EnvDBUser              = "FORK_POSTGRES_USER"
	EnvDBName              = "FORK_POSTGRES_DB_NAME"
	EnvUseSQLite           = "FORK_USE_SQLITE"
	EnvRedisURL            = "FORK_REDIS_URL"
	EnvJWTSecret           = "FORK_JWT_SECRET"
	EnvJWTIssuer           = "FORK_JWT_ISSUER"
	EnvJWTExpMins          = "FORK_JWT_EXPIRATION_MINUTES"
	EnvEmbeddingProvider   = "FORK_EMBEDDING_PROVIDER"
	EnvEmbeddingDimensions = "FORK_EMBEDDING_DIMENSIONS"
	EnvEmbeddingWorkers    = "FORK_EMBEDDING_WORKERS"
	EnvOpenAIAPIKey        = "FORK_OPENAI_API_KEY"
	EnvSearchMinSimilarity = "FORK_SEARCH_MIN_SIMILARITY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
