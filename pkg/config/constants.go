package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	StockPolicyBestEffort = "best_effort"
	StockPolicyAtomic     = "atomic"

	MediaBackendCloudinary = "cloudinary"
	MediaBackendS3         = "s3"
)

const (
	EnvAppEnv              = "STOREFRONT_APP_ENV"
	EnvPort                = "STOREFRONT_APP_PORT"
	EnvDBDSN               = "STOREFRONT_DB_DSN"
	EnvDBDriver            = "STOREFRONT_DB_DRIVER"
	EnvDBHost              = "STOREFRONT_DB_HOST"
	EnvDBUser              = "STOREFRONT_DB_USER"
	EnvDBName              = "STOREFRONT_DB_NAME"
	EnvRedisURL            = "STOREFRONT_REDIS_URL"
	EnvJWTSecret           = "STOREFRONT_JWT_SECRET"
	EnvCheckoutStockPolicy = "STOREFRONT_CHECKOUT_STOCK_POLICY"
	EnvMediaBackend        = "STOREFRONT_MEDIA_BACKEND"
)
