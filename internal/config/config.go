package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	NodeID      int64

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Redis        RedisConfig
	Pricing      PricingConfig
	DiscountCode DiscountCodeConfig
	PaymentLink  PaymentLinkConfig
	Lead         LeadConfig
	Invoice      InvoiceConfig
	RateLimit    RateLimitConfig
	Scheduler    SchedulerConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a redis endpoint was configured.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

type PricingConfig struct {
	DefaultMarginPercent decimal.Decimal
	QuoteValidity        time.Duration
}

type DiscountCodeConfig struct {
	Prefix      string
	Length      int
	MaxAttempts int
}

type PaymentLinkConfig struct {
	ExpiryHours int
	BaseURL     string
}

type LeadConfig struct {
	AutoAssignEnabled bool
	Window            time.Duration
	LockTTL           time.Duration
}

type InvoiceConfig struct {
	StripeSecretKey string
	StripeAccountID string
	StripeAPIBase   string
	StaleAfter      time.Duration
	DaysUntilDue    int
}

type RateLimitConfig struct {
	PublicRate  float64
	PublicBurst int
}

type SchedulerConfig struct {
	Enabled     bool
	RunInterval time.Duration
	BatchSize   int
}

// Default returns the configuration used when no environment overrides exist.
func Default() Config {
	return Config{
		AppName:      "bookingcore",
		AppVersion:   "0.1.0",
		Environment:  "development",
		HTTPAddr:     ":8080",
		NodeID:       1,
		OTLPEndpoint: "localhost:4317",
		DBType:       "postgres",
		DBHost:       "localhost",
		DBPort:       "5432",
		DBName:       "bookingcore",
		DBUser:       "postgres",
		DBSSLMode:    "disable",
		Pricing: PricingConfig{
			DefaultMarginPercent: decimal.NewFromInt(25),
			QuoteValidity:        30 * 24 * time.Hour,
		},
		DiscountCode: DiscountCodeConfig{
			Prefix:      "BEIGE",
			Length:      6,
			MaxAttempts: 10,
		},
		PaymentLink: PaymentLinkConfig{
			ExpiryHours: 72,
			BaseURL:     "http://localhost:3000/pay",
		},
		Lead: LeadConfig{
			AutoAssignEnabled: true,
			Window:            24 * time.Hour,
			LockTTL:           10 * time.Second,
		},
		Invoice: InvoiceConfig{
			StripeAPIBase: "https://api.stripe.com",
			StaleAfter:    10 * time.Minute,
			DaysUntilDue:  7,
		},
		RateLimit: RateLimitConfig{
			PublicRate:  5,
			PublicBurst: 10,
		},
		Scheduler: SchedulerConfig{
			Enabled:     true,
			RunInterval: time.Minute,
			BatchSize:   100,
		},
	}
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	def := Default()
	cfg := Config{
		AppName:           getenv("APP_SERVICE", def.AppName),
		AppVersion:        getenv("APP_VERSION", def.AppVersion),
		Environment:       getenv("ENVIRONMENT", def.Environment),
		HTTPAddr:          getenv("HTTP_ADDR", def.HTTPAddr),
		NodeID:            int64(getenvInt("SNOWFLAKE_NODE_ID", int(def.NodeID))),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", def.OTLPEndpoint),
		DBType:            getenv("DATABASE_TYPE", def.DBType),
		DBHost:            getenv("DATABASE_HOST", def.DBHost),
		DBPort:            getenv("DATABASE_PORT", def.DBPort),
		DBName:            getenv("DATABASE_NAME", def.DBName),
		DBUser:            getenv("DATABASE_USER", def.DBUser),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", def.DBSSLMode),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Pricing: PricingConfig{
			DefaultMarginPercent: getenvDecimal("DEFAULT_MARGIN_PERCENT", def.Pricing.DefaultMarginPercent),
			QuoteValidity:        time.Duration(getenvInt("QUOTE_VALIDITY_DAYS", 30)) * 24 * time.Hour,
		},
		DiscountCode: DiscountCodeConfig{
			Prefix:      strings.ToUpper(strings.TrimSpace(getenv("DISCOUNT_CODE_PREFIX", def.DiscountCode.Prefix))),
			Length:      getenvInt("DISCOUNT_CODE_LENGTH", def.DiscountCode.Length),
			MaxAttempts: getenvInt("DISCOUNT_CODE_MAX_ATTEMPTS", def.DiscountCode.MaxAttempts),
		},
		PaymentLink: PaymentLinkConfig{
			ExpiryHours: getenvInt("PAYMENT_LINK_EXPIRY_HOURS", def.PaymentLink.ExpiryHours),
			BaseURL:     strings.TrimRight(getenv("PAYMENT_LINK_BASE_URL", def.PaymentLink.BaseURL), "/"),
		},
		Lead: LeadConfig{
			AutoAssignEnabled: getenvBool("LEAD_AUTO_ASSIGN_ENABLED", def.Lead.AutoAssignEnabled),
			Window:            time.Duration(getenvInt("LEAD_ASSIGNMENT_WINDOW_HOURS", 24)) * time.Hour,
			LockTTL:           def.Lead.LockTTL,
		},
		Invoice: InvoiceConfig{
			StripeSecretKey: strings.TrimSpace(getenv("STRIPE_SECRET_KEY", "")),
			StripeAccountID: strings.TrimSpace(getenv("STRIPE_ACCOUNT_ID", "")),
			StripeAPIBase:   strings.TrimRight(getenv("STRIPE_API_BASE", def.Invoice.StripeAPIBase), "/"),
			StaleAfter:      time.Duration(getenvInt("INVOICE_GENERATION_STALE_MINUTES", 10)) * time.Minute,
			DaysUntilDue:    getenvInt("INVOICE_DAYS_UNTIL_DUE", def.Invoice.DaysUntilDue),
		},
		RateLimit: RateLimitConfig{
			PublicRate:  getenvFloat("PUBLIC_RATE_LIMIT_RPS", def.RateLimit.PublicRate),
			PublicBurst: getenvInt("PUBLIC_RATE_LIMIT_BURST", def.RateLimit.PublicBurst),
		},
		Scheduler: SchedulerConfig{
			Enabled:     getenvBool("SCHEDULER_ENABLED", def.Scheduler.Enabled),
			RunInterval: time.Duration(getenvInt("SCHEDULER_INTERVAL_SECONDS", 60)) * time.Second,
			BatchSize:   getenvInt("SCHEDULER_BATCH_SIZE", def.Scheduler.BatchSize),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
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

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDecimal(key string, def decimal.Decimal) decimal.Decimal {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return def
	}
	return parsed
}
