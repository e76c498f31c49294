package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port      string `envconfig:"PORT"       default:":3000"`
	APIPrefix string `envconfig:"API_PREFIX" default:"/api"`
	LogLevel  string `envconfig:"LOG_LEVEL"  default:"info"`
	StaticDir string `envconfig:"STATIC_DIR"`

	DBDriver    string `envconfig:"DB_DRIVER"    default:"sqlite"` // postgres | sqlite
	DatabaseURL string `envconfig:"DATABASE_URL"`
	SQLitePath  string `envconfig:"SQLITE_PATH"  default:"./data/data.db"`

	SessionSecret     string `envconfig:"SESSION_SECRET"      default:"devsecret"`
	AdminPassword     string `envconfig:"ADMIN_PASSWORD"      default:"PASSCODE"`
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`

	CheckoutRateLimit int           `envconfig:"CHECKOUT_RATE_LIMIT" default:"60"`
	LoginRateLimit    int           `envconfig:"LOGIN_RATE_LIMIT"    default:"6"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW"   default:"1m"`
	RedisAddr         string        `envconfig:"REDIS_ADDR"`

	CurrencySymbol    string  `envconfig:"CURRENCY_SYMBOL"     default:"₹"`
	StrictPricing     bool    `envconfig:"STRICT_PRICING"      default:"false"`
	USDConversionRate float64 `envconfig:"USD_CONVERSION_RATE" default:"83"`
	ProductsManifest  string  `envconfig:"PRODUCTS_MANIFEST"   default:"./products.json"`
	NewsManifest      string  `envconfig:"NEWS_MANIFEST"`

	Mailer                 string `envconfig:"MAILER" default:"none"` // none | smtp | ses
	AdminNotificationEmail string `envconfig:"ADMIN_NOTIFICATION_EMAIL"`
	FromEmail              string `envconfig:"FROM_EMAIL"`
	SMTPHost               string `envconfig:"SMTP_HOST"`
	SMTPPort               int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser               string `envconfig:"SMTP_USER"`
	SMTPPass               string `envconfig:"SMTP_PASS"`
	SMTPSecure             bool   `envconfig:"SMTP_SECURE" default:"false"`
	AWSRegion              string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSAccessKeyID         string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey     string `envconfig:"AWS_SECRET_ACCESS_KEY"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"storefront.events"`

	GrpcPort string `envconfig:"GRPC_PORT"`

	WSOriginPatterns []string `envconfig:"WS_ORIGIN_PATTERNS"`
}

var (
	config Config
	once   sync.Once
)

// LoadConfig reads .env (if any) and the process environment exactly once.
func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		cfg, err := Load()
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}
		config = *cfg

		logger.Infof("Configuration loaded: Port=%s, DBDriver=%s, LogLevel=%s, Mailer=%s",
			config.Port, config.DBDriver, config.LogLevel, config.Mailer)
		if config.SessionSecret == "devsecret" {
			logger.Warn("Configuration: SESSION_SECRET is the development default, set it in production")
		}
	})
	return &config
}

// Load processes the environment without the .env side effect.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH cannot be empty when DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER %q (want postgres or sqlite)", c.DBDriver)
	}

	c.Mailer = strings.ToLower(strings.TrimSpace(c.Mailer))
	switch c.Mailer {
	case "", "none":
		c.Mailer = "none"
	case "smtp":
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when MAILER=smtp")
		}
	case "ses":
	default:
		return fmt.Errorf("invalid MAILER %q (want none, smtp or ses)", c.Mailer)
	}
	if c.Mailer != "none" && c.AdminNotificationEmail == "" {
		return fmt.Errorf("ADMIN_NOTIFICATION_EMAIL is required when MAILER=%s", c.Mailer)
	}

	if c.CheckoutRateLimit <= 0 || c.LoginRateLimit <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if c.APIPrefix == "/" {
		c.APIPrefix = ""
	}
	c.APIPrefix = strings.TrimRight(c.APIPrefix, "/")
	return nil
}
