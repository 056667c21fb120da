package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port           int    `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"` // development | production
	WorkerPoolSize int    `mapstructure:"WORKER_POOL_SIZE"`

	// HTTP; CORS_ORIGINS is comma-separated, empty or "*" allows any origin
	CORSOrigins        string `mapstructure:"CORS_ORIGINS"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	LoginRatePerMinute int    `mapstructure:"LOGIN_RATE_LIMIT_PER_MINUTE"`

	// Database
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"` // postgres | sqlite | libsql
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DatabasePath   string `mapstructure:"DATABASE_PATH"`

	// Redis; empty disables the search cache and the e-mail queue
	RedisURL string `mapstructure:"REDIS_URL"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`
	JWTRefreshHours    int    `mapstructure:"JWT_REFRESH_HOURS"`
	AdminEmail         string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword      string `mapstructure:"ADMIN_PASSWORD"`

	// Company display fields printed on invoices
	CompanyName    string `mapstructure:"COMPANY_NAME"`
	CompanyAddress string `mapstructure:"COMPANY_ADDRESS"`
	CompanyEmail   string `mapstructure:"COMPANY_EMAIL"`
	CompanyPhone   string `mapstructure:"COMPANY_PHONE"`
	BankInfo       string `mapstructure:"BANK_INFO"`
	LogoFile       string `mapstructure:"LOGO_FILE"`

	// Invoicing
	CurrencyDefault      string `mapstructure:"CURRENCY_DEFAULT"`
	InvoicePrefix        string `mapstructure:"INVOICE_PREFIX"`
	InvoiceSuffix        string `mapstructure:"INVOICE_SUFFIX"`
	InvoiceNumberSource  string `mapstructure:"INVOICE_NUMBER_SOURCE"` // scan | counter
	InvoiceNumberRetries int    `mapstructure:"INVOICE_NUMBER_RETRIES"`
	AllowDiscountLines   bool   `mapstructure:"ALLOW_DISCOUNT_LINES"`

	// PDF archive
	PDFStorage         string `mapstructure:"PDF_STORAGE"` // local | s3
	PDFStoragePath     string `mapstructure:"PDF_STORAGE_PATH"`
	S3Bucket           string `mapstructure:"S3_BUCKET"`
	S3Region           string `mapstructure:"S3_REGION"`
	S3AccessKeyID      string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey  string `mapstructure:"S3_SECRET_ACCESS_KEY"`

	// SMTP
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	// Failed e-mail jobs move to the DLQ after this many runs
	EmailMaxAttempts int `mapstructure:"EMAIL_MAX_ATTEMPTS"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	setDefaults(v)

	// Optional .env file for local development; a missing file is not an error
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 5000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("WORKER_POOL_SIZE", 2)
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 600)
	v.SetDefault("LOGIN_RATE_LIMIT_PER_MINUTE", 20)

	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_PATH", "zakcrm.db")
	v.SetDefault("REDIS_URL", "")

	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_EXPIRATION_HOURS", 8)
	v.SetDefault("JWT_REFRESH_HOURS", 72)
	v.SetDefault("ADMIN_EMAIL", "admin@example.com")
	v.SetDefault("ADMIN_PASSWORD", "admin123")

	v.SetDefault("COMPANY_NAME", "Your Company")
	v.SetDefault("COMPANY_ADDRESS", "")
	v.SetDefault("COMPANY_EMAIL", "")
	v.SetDefault("COMPANY_PHONE", "")
	v.SetDefault("BANK_INFO", "")
	v.SetDefault("LOGO_FILE", "")

	v.SetDefault("CURRENCY_DEFAULT", "USD")
	v.SetDefault("INVOICE_PREFIX", "HOTGEN")
	v.SetDefault("INVOICE_SUFFIX", "ZAK")
	v.SetDefault("INVOICE_NUMBER_SOURCE", "scan")
	v.SetDefault("INVOICE_NUMBER_RETRIES", 3)
	v.SetDefault("ALLOW_DISCOUNT_LINES", false)

	v.SetDefault("PDF_STORAGE", "local")
	v.SetDefault("PDF_STORAGE_PATH", "data/invoices")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ACCESS_KEY_ID", "")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "")

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("EMAIL_MAX_ATTEMPTS", 3)
}

// DatabaseDSN returns the connection string for the configured driver.
// SQLite falls back to DATABASE_PATH when no URL is given.
func (c *Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DatabasePath
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// BankLines splits BANK_INFO into printable lines. Literal "\n" sequences are
// accepted because most env files cannot hold real newlines.
func (c *Config) BankLines() []string {
	raw := strings.ReplaceAll(c.BankInfo, `\n`, "\n")
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
