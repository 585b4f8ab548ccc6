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
	CORS          CORSConfig
	Cart          CartConfig
	Checkout      CheckoutConfig
	Media         MediaConfig
	Cloudinary    CloudinaryConfig
	S3            S3Config
	EmailJS       EmailJSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Media.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
}

// ConsoleLogs reports whether logs should use the human-readable writer.
func (a AppConfig) ConsoleLogs() bool {
	return strings.EqualFold(a.LogFormat, "console")
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"STOREFRONT_DB_HOST"`
	Port     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	User     string `envconfig:"STOREFRONT_DB_USER"`
	Password string `envconfig:"STOREFRONT_DB_PASSWORD"`
	Name     string `envconfig:"STOREFRONT_DB_NAME"`
	SSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"STOREFRONT_DB_SLOW_QUERY" default:"500ms"`
}

// ensureDSN builds a postgres DSN from the discrete host settings when no DSN is provided.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if strings.EqualFold(d.Driver, DBDriverSQLite) {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	var missing []string
	for env, val := range map[string]string{
		EnvDBHost: d.Host,
		EnvDBUser: d.User,
		EnvDBName: d.Name,
	} {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"STOREFRONT_JWT_ISSUER" default:"storefront"`
	ExpirationMinutes      int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"STOREFRONT_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOREFRONT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOREFRONT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOREFRONT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOREFRONT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOREFRONT_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"*"`
}

type CartConfig struct {
	TTL time.Duration `envconfig:"STOREFRONT_CART_TTL" default:"720h"`
}

type CheckoutConfig struct {
	StockPolicy       string        `envconfig:"STOREFRONT_CHECKOUT_STOCK_POLICY" default:"best_effort"`
	IdempotencyTTL    time.Duration `envconfig:"STOREFRONT_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
	MaxProofSizeBytes int64         `envconfig:"STOREFRONT_CHECKOUT_MAX_PROOF_BYTES" default:"10485760"`
	CurrencySymbol    string        `envconfig:"STOREFRONT_CURRENCY_SYMBOL" default:"₦"`
	RateLimit         int           `envconfig:"STOREFRONT_CHECKOUT_RATE_LIMIT" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"STOREFRONT_CHECKOUT_RATE_LIMIT_WINDOW" default:"1m"`
}

func (c CheckoutConfig) validate() error {
	switch c.StockPolicy {
	case StockPolicyBestEffort, StockPolicyAtomic:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q", EnvCheckoutStockPolicy, StockPolicyBestEffort, StockPolicyAtomic)
	}
}

type MediaConfig struct {
	Backend      string `envconfig:"STOREFRONT_MEDIA_BACKEND" default:"cloudinary"`
	MaxSizeBytes int64  `envconfig:"STOREFRONT_MEDIA_MAX_BYTES" default:"10485760"`
}

func (m MediaConfig) validate() error {
	switch m.Backend {
	case MediaBackendCloudinary, MediaBackendS3:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q", EnvMediaBackend, MediaBackendCloudinary, MediaBackendS3)
	}
}

type CloudinaryConfig struct {
	CloudName    string        `envconfig:"STOREFRONT_CLOUDINARY_CLOUD_NAME"`
	UploadPreset string        `envconfig:"STOREFRONT_CLOUDINARY_UPLOAD_PRESET"`
	BaseURL      string        `envconfig:"STOREFRONT_CLOUDINARY_BASE_URL" default:"https://api.cloudinary.com/v1_1"`
	Timeout      time.Duration `envconfig:"STOREFRONT_CLOUDINARY_TIMEOUT" default:"30s"`
}

type S3Config struct {
	Bucket        string `envconfig:"STOREFRONT_S3_BUCKET"`
	Region        string `envconfig:"STOREFRONT_S3_REGION" default:"us-east-1"`
	Endpoint      string `envconfig:"STOREFRONT_S3_ENDPOINT"`
	AccessKey     string `envconfig:"STOREFRONT_S3_ACCESS_KEY"`
	SecretKey     string `envconfig:"STOREFRONT_S3_SECRET_KEY"`
	PublicBaseURL string `envconfig:"STOREFRONT_S3_PUBLIC_BASE_URL"`
	KeyPrefix     string `envconfig:"STOREFRONT_S3_KEY_PREFIX" default:"uploads"`
}

type EmailJSConfig struct {
	Enabled            bool          `envconfig:"STOREFRONT_EMAILJS_ENABLED" default:"false"`
	BaseURL            string        `envconfig:"STOREFRONT_EMAILJS_BASE_URL" default:"https://api.emailjs.com/api/v1.0"`
	ServiceID          string        `envconfig:"STOREFRONT_EMAILJS_SERVICE_ID"`
	PublicKey          string        `envconfig:"STOREFRONT_EMAILJS_PUBLIC_KEY"`
	PrivateKey         string        `envconfig:"STOREFRONT_EMAILJS_PRIVATE_KEY"`
	CustomerTemplateID string        `envconfig:"STOREFRONT_EMAILJS_CUSTOMER_TEMPLATE_ID"`
	AdminTemplateID    string        `envconfig:"STOREFRONT_EMAILJS_ADMIN_TEMPLATE_ID"`
	StatusTemplateID   string        `envconfig:"STOREFRONT_EMAILJS_STATUS_TEMPLATE_ID"`
	Timeout            time.Duration `envconfig:"STOREFRONT_EMAILJS_TIMEOUT" default:"10s"`
}
