package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	S3      S3Config
	Log     LogConfig
	CORS    CORSConfig
	Email   EmailConfig
	Kafka   KafkaConfig
	Redis   RedisConfig
	Tariff  TariffConfig
	Billing BillingConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider           string `mapstructure:"provider"`
	Region             string `mapstructure:"region"`
	FromAddress        string `mapstructure:"from_address"`
	FromName           string `mapstructure:"from_name"`
	NotifyOnGeneration bool   `mapstructure:"notify_on_generation"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`

	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds the settings used to verify bearer tokens.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings for invoice documents.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// KafkaConfig holds billing event publishing settings. Publishing is
// disabled when no brokers are configured.
type KafkaConfig struct {
	Brokers  []string `mapstructure:"brokers"`
	Topic    string   `mapstructure:"topic"`
	ClientID string   `mapstructure:"client_id"`
}

// Enabled reports whether events should be published to Kafka.
func (k *KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// RedisConfig holds the tariff cache connection. An empty address disables
// caching.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TariffConfig holds dynamic tariff waterfall settings.
type TariffConfig struct {
	FallbackRate      float64       `mapstructure:"fallback_rate"`
	FailureThreshold  int           `mapstructure:"failure_threshold"`
	Cooldown          time.Duration `mapstructure:"cooldown"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	DiscomTimeoutSecs int           `mapstructure:"discom_timeout_secs"`
}

// BillingConfig holds contract, invoicing and payment settings.
type BillingConfig struct {
	DefaultTimezone     string        `mapstructure:"default_timezone"`
	MaxBackdateDays     int           `mapstructure:"max_backdate_days"`
	MaxFutureStartDays  int           `mapstructure:"max_future_start_days"`
	CapexUpfrontPercent float64       `mapstructure:"capex_upfront_percent"`
	CapexBalanceDueDays int           `mapstructure:"capex_balance_due_days"`
	ReconcileTolerance  float64       `mapstructure:"reconcile_tolerance"`
	SweepInterval       time.Duration `mapstructure:"sweep_interval"`
	SweepBatchSize      int           `mapstructure:"sweep_batch_size"`
}

// Load reads configuration from environment variables with the CHAINFLY_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CHAINFLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "chainfly")
	v.SetDefault("db.password", "chainfly_secret")
	v.SetDefault("db.name", "chainfly_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.conn_max_lifetime", "30m")

	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "chainfly")

	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "chainfly-invoices")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "billing@chainfly.energy")
	v.SetDefault("email.from_name", "Chainfly Billing")
	v.SetDefault("email.notify_on_generation", true)

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "ppa.billing.events")
	v.SetDefault("kafka.client_id", "chainfly-api")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	// Tariff waterfall defaults
	v.SetDefault("tariff.fallback_rate", 7.0)
	v.SetDefault("tariff.failure_threshold", 3)
	v.SetDefault("tariff.cooldown", "5m")
	v.SetDefault("tariff.cache_ttl", "24h")
	v.SetDefault("tariff.discom_timeout_secs", 10)

	// Billing defaults
	v.SetDefault("billing.default_timezone", "Asia/Kolkata")
	v.SetDefault("billing.max_backdate_days", 365)
	v.SetDefault("billing.max_future_start_days", 730)
	v.SetDefault("billing.capex_upfront_percent", 20.0)
	v.SetDefault("billing.capex_balance_due_days", 30)
	v.SetDefault("billing.reconcile_tolerance", 0.01)
	v.SetDefault("billing.sweep_interval", "1h")
	v.SetDefault("billing.sweep_batch_size", 100)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "CHAINFLY_SERVER_PORT",
		"server.read_timeout":            "CHAINFLY_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "CHAINFLY_SERVER_WRITE_TIMEOUT",
		"server.environment":             "CHAINFLY_SERVER_ENVIRONMENT",
		"db.host":                        "CHAINFLY_DB_HOST",
		"db.port":                        "CHAINFLY_DB_PORT",
		"db.user":                        "CHAINFLY_DB_USER",
		"db.password":                    "CHAINFLY_DB_PASSWORD",
		"db.name":                        "CHAINFLY_DB_NAME",
		"db.sslmode":                     "CHAINFLY_DB_SSLMODE",
		"db.max_open":                    "CHAINFLY_DB_MAX_OPEN",
		"db.max_idle":                    "CHAINFLY_DB_MAX_IDLE",
		"db.conn_max_lifetime":           "CHAINFLY_DB_CONN_MAX_LIFETIME",
		"jwt.secret":                     "CHAINFLY_JWT_SECRET",
		"jwt.issuer":                     "CHAINFLY_JWT_ISSUER",
		"s3.region":                      "CHAINFLY_S3_REGION",
		"s3.bucket":                      "CHAINFLY_S3_BUCKET",
		"s3.endpoint":                    "CHAINFLY_S3_ENDPOINT",
		"s3.access_key":                  "CHAINFLY_S3_ACCESS_KEY",
		"s3.secret_key":                  "CHAINFLY_S3_SECRET_KEY",
		"s3.presign_expiry":              "CHAINFLY_S3_PRESIGN_EXPIRY",
		"log.level":                      "CHAINFLY_LOG_LEVEL",
		"log.format":                     "CHAINFLY_LOG_FORMAT",
		"cors.allowed_origins":           "CHAINFLY_CORS_ALLOWED_ORIGINS",
		"email.provider":                 "CHAINFLY_EMAIL_PROVIDER",
		"email.region":                   "CHAINFLY_EMAIL_REGION",
		"email.from_address":             "CHAINFLY_EMAIL_FROM_ADDRESS",
		"email.from_name":                "CHAINFLY_EMAIL_FROM_NAME",
		"email.notify_on_generation":     "CHAINFLY_EMAIL_NOTIFY_ON_GENERATION",
		"kafka.brokers":                  "CHAINFLY_KAFKA_BROKERS",
		"kafka.topic":                    "CHAINFLY_KAFKA_TOPIC",
		"kafka.client_id":                "CHAINFLY_KAFKA_CLIENT_ID",
		"redis.addr":                     "CHAINFLY_REDIS_ADDR",
		"redis.password":                 "CHAINFLY_REDIS_PASSWORD",
		"redis.db":                       "CHAINFLY_REDIS_DB",
		"tariff.fallback_rate":           "CHAINFLY_TARIFF_FALLBACK_RATE",
		"tariff.failure_threshold":       "CHAINFLY_TARIFF_FAILURE_THRESHOLD",
		"tariff.cooldown":                "CHAINFLY_TARIFF_COOLDOWN",
		"tariff.cache_ttl":               "CHAINFLY_TARIFF_CACHE_TTL",
		"tariff.discom_timeout_secs":     "CHAINFLY_TARIFF_DISCOM_TIMEOUT_SECS",
		"billing.default_timezone":       "CHAINFLY_BILLING_DEFAULT_TIMEZONE",
		"billing.max_backdate_days":      "CHAINFLY_BILLING_MAX_BACKDATE_DAYS",
		"billing.max_future_start_days":  "CHAINFLY_BILLING_MAX_FUTURE_START_DAYS",
		"billing.capex_upfront_percent":  "CHAINFLY_BILLING_CAPEX_UPFRONT_PERCENT",
		"billing.capex_balance_due_days": "CHAINFLY_BILLING_CAPEX_BALANCE_DUE_DAYS",
		"billing.reconcile_tolerance":    "CHAINFLY_BILLING_RECONCILE_TOLERANCE",
		"billing.sweep_interval":         "CHAINFLY_BILLING_SWEEP_INTERVAL",
		"billing.sweep_batch_size":       "CHAINFLY_BILLING_SWEEP_BATCH_SIZE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it unless CHAINFLY_SERVER_PORT is set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CHAINFLY_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),

		ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Email = EmailConfig{
		Provider:           v.GetString("email.provider"),
		Region:             v.GetString("email.region"),
		FromAddress:        v.GetString("email.from_address"),
		FromName:           v.GetString("email.from_name"),
		NotifyOnGeneration: v.GetBool("email.notify_on_generation"),
	}
	cfg.Kafka = KafkaConfig{
		Brokers:  splitList(v.GetString("kafka.brokers")),
		Topic:    v.GetString("kafka.topic"),
		ClientID: v.GetString("kafka.client_id"),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	cfg.Tariff = TariffConfig{
		FallbackRate:      v.GetFloat64("tariff.fallback_rate"),
		FailureThreshold:  v.GetInt("tariff.failure_threshold"),
		Cooldown:          v.GetDuration("tariff.cooldown"),
		CacheTTL:          v.GetDuration("tariff.cache_ttl"),
		DiscomTimeoutSecs: v.GetInt("tariff.discom_timeout_secs"),
	}
	cfg.Billing = BillingConfig{
		DefaultTimezone:     v.GetString("billing.default_timezone"),
		MaxBackdateDays:     v.GetInt("billing.max_backdate_days"),
		MaxFutureStartDays:  v.GetInt("billing.max_future_start_days"),
		CapexUpfrontPercent: v.GetFloat64("billing.capex_upfront_percent"),
		CapexBalanceDueDays: v.GetInt("billing.capex_balance_due_days"),
		ReconcileTolerance:  v.GetFloat64("billing.reconcile_tolerance"),
		SweepInterval:       v.GetDuration("billing.sweep_interval"),
		SweepBatchSize:      v.GetInt("billing.sweep_batch_size"),
	}

	if _, err := time.LoadLocation(cfg.Billing.DefaultTimezone); err != nil {
		return nil, fmt.Errorf("billing.default_timezone: %w", err)
	}
	if cfg.Tariff.FallbackRate <= 0 {
		return nil, fmt.Errorf("tariff.fallback_rate must be positive, got %v", cfg.Tariff.FallbackRate)
	}
	if cfg.Billing.SweepInterval <= 0 {
		return nil, fmt.Errorf("billing.sweep_interval must be positive, got %v", cfg.Billing.SweepInterval)
	}
	if cfg.Billing.SweepBatchSize <= 0 {
		return nil, fmt.Errorf("billing.sweep_batch_size must be positive, got %d", cfg.Billing.SweepBatchSize)
	}
	return cfg, nil
}

// splitList parses a comma-separated setting, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
