package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Redis     RedisConfig
	Payment   PaymentConfig
	Pricing   PricingConfig
	Video     VideoConfig
	Marketer  MarketerConfig
	S3        S3Config
	Scheduler SchedulerConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
	// Domain is the public origin used to build provider callback URLs.
	Domain string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type PaymentConfig struct {
	PayPal PayPalConfig
	Stripe StripeConfig
}

type PayPalConfig struct {
	ClientID string
	Secret   string
	BaseURL  string
}

type StripeConfig struct {
	SecretKey string
	BaseURL   string
}

// PricingConfig holds the flat surcharges applied to the generic cart view.
type PricingConfig struct {
	DeliveryCost decimal.Decimal
	Tax          decimal.Decimal
	Discount     decimal.Decimal
}

type VideoConfig struct {
	BunnyPullZone    string
	BunnySecurityKey string
	TokenTTL         time.Duration
}

type MarketerConfig struct {
	// UseUserCommissionRate switches the dashboard from the flat rate to each marketer's own rate.
	UseUserCommissionRate bool
	FlatCommissionRate    decimal.Decimal
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

// AdminConfig names the account promoted to admin at startup. Empty email skips it.
type AdminConfig struct {
	Email    string
	Password string
}

type SchedulerConfig struct {
	Enabled            bool
	AbandonedCartAfter time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
			Domain:      strings.TrimRight(getEnv("APP_DOMAIN", "http://localhost:8080"), "/"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "mithaqq"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("JWT_REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Redis: RedisConfig{
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "false")),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0")),
		},
		Payment: PaymentConfig{
			PayPal: PayPalConfig{
				ClientID: getEnv("PAYPAL_CLIENT_ID", ""),
				Secret:   getEnv("PAYPAL_SECRET", ""),
				BaseURL:  getEnv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
			},
			Stripe: StripeConfig{
				SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
				BaseURL:   getEnv("STRIPE_BASE_URL", "https://api.stripe.com"),
			},
		},
		Pricing: PricingConfig{
			DeliveryCost: parseDecimal(getEnv("PRICING_DELIVERY_COST", "25.00")),
			Tax:          parseDecimal(getEnv("PRICING_TAX", "14.00")),
			Discount:     parseDecimal(getEnv("PRICING_DISCOUNT", "60.00")),
		},
		Video: VideoConfig{
			BunnyPullZone:    getEnv("BUNNY_PULL_ZONE", ""),
			BunnySecurityKey: getEnv("BUNNY_SECURITY_KEY", ""),
			TokenTTL:         parseDuration(getEnv("BUNNY_TOKEN_TTL", "3h"), 3*time.Hour),
		},
		Marketer: MarketerConfig{
			UseUserCommissionRate: parseBool(getEnv("MARKETER_USE_USER_RATE", "false")),
			FlatCommissionRate:    parseDecimal(getEnv("MARKETER_FLAT_RATE", "0.10")),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "eu-central-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "mithaqq-uploads"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Scheduler: SchedulerConfig{
			Enabled:            parseBool(getEnv("SCHEDULER_ENABLED", "true")),
			AbandonedCartAfter: parseDuration(getEnv("ABANDONED_CART_AFTER", "720h"), 720*time.Hour),
		},
		Admin: AdminConfig{
			Email:    strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", ""))),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the fields the server cannot start without.
// Provider credentials are optional and checked by each client.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		errs = append(errs, errors.New("DB_HOST and DB_NAME are required"))
	}
	if c.Server.Domain == "" {
		errs = append(errs, errors.New("APP_DOMAIN is required"))
	}
	if err := c.Pricing.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Admin.Email != "" && len(c.Admin.Password) < 8 {
		errs = append(errs, errors.New("ADMIN_PASSWORD must be at least 8 characters when ADMIN_EMAIL is set"))
	}
	if c.Marketer.FlatCommissionRate.IsNegative() {
		errs = append(errs, errors.New("MARKETER_FLAT_RATE must not be negative"))
	}
	return errors.Join(errs...)
}

func (p PricingConfig) Validate() error {
	if p.DeliveryCost.IsNegative() || p.Tax.IsNegative() || p.Discount.IsNegative() {
		return errors.New("pricing surcharges must not be negative")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Printf("Invalid decimal %s, using 0", s)
		return decimal.Zero
	}
	return d
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseSlice(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
