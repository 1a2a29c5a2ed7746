package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration. Every service receives it via
// dependency injection; nothing reads the environment after startup.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string
	HTTPAddr    string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	Gateway GatewayConfig
	Utmify  UtmifyConfig

	AdminPassword string

	RedisAddr     string
	RedisPassword string

	CatalogPath string

	MetricsEnabled bool
	OTLPEndpoint   string
}

// GatewayConfig carries the payment gateway credentials. An empty APIToken
// means payment creation fails fast before any network call.
type GatewayConfig struct {
	APIURL            string
	APIToken          string
	OfferHash         string
	ProductHash       string
	PostbackURL       string
	WebhookSecret     string
	PixExpirationMins int
}

// UtmifyConfig carries the marketing-attribution relay credentials.
type UtmifyConfig struct {
	APIURL   string
	APIToken string
	Platform string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "checkout"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "checkout"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		Gateway: GatewayConfig{
			APIURL:            getenv("GATEWAY_API_URL", "https://api.gateway.example/v1"),
			APIToken:          strings.TrimSpace(getenv("GATEWAY_API_TOKEN", "")),
			OfferHash:         strings.TrimSpace(getenv("GATEWAY_OFFER_HASH", "")),
			ProductHash:       strings.TrimSpace(getenv("GATEWAY_PRODUCT_HASH", "")),
			PostbackURL:       strings.TrimSpace(getenv("GATEWAY_POSTBACK_URL", "")),
			WebhookSecret:     strings.TrimSpace(getenv("GATEWAY_WEBHOOK_SECRET", "")),
			PixExpirationMins: getenvInt("GATEWAY_PIX_EXPIRATION_MINUTES", 30),
		},

		Utmify: UtmifyConfig{
			APIURL:   getenv("UTMIFY_API_URL", "https://api.utmify.com.br/api-credentials/orders"),
			APIToken: strings.TrimSpace(getenv("UTMIFY_API_TOKEN", "")),
			Platform: getenv("UTMIFY_PLATFORM", "FunilDigital"),
		},

		AdminPassword: strings.TrimSpace(getenv("ADMIN_PASSWORD", "")),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		CatalogPath: strings.TrimSpace(getenv("CATALOG_PATH", "")),

		MetricsEnabled: getenvBool("METRICS_ENABLED", false),
		OTLPEndpoint:   getenv("OTLP_ENDPOINT", "localhost:4317"),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
