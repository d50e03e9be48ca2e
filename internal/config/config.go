package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Auth        AuthConfig
	SMTP        SMTPConfig
	Invoice     InvoiceConfig
	RateLimit   RateLimitConfig
	Features    FeatureFlags
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	InvoicesTopic string
	ConsumerGroup string
}

type AuthConfig struct {
	JWTSecret          string
	TokenTTL           time.Duration
	GoogleTokenInfoURL string
	GoogleClientID     string
	Timeout            time.Duration
}

// minJWTSecretLength is the shortest signing secret accepted for HS256.
const minJWTSecretLength = 32

// Validate reports settings that would let sign-in accept tokens it should
// not: a missing Google client ID skips the audience check and a missing or
// short secret makes session tokens forgeable.
func (a AuthConfig) Validate() error {
	if a.GoogleClientID == "" {
		return errors.New("GOOGLE_CLIENT_ID is required")
	}
	if len(a.JWTSecret) < minJWTSecretLength {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	return nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// InvoiceConfig holds invoice generation settings.
type InvoiceConfig struct {
	// StoreTimeout bounds a single invoice insert, including its commit.
	StoreTimeout      time.Duration
	MaxNumberAttempts int
	DefaultGSTPercent float64
}

type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

type FeatureFlags struct {
	EnableCaching      bool
	EnableEvents       bool
	EnableInvoiceEmail bool
	AutoMigrate        bool
}

func Load() *Config {
	return &Config{
		ServiceName: getEnvString("SERVICE_NAME", "billify"),
		Server: ServerConfig{
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvInt("SERVER_SHUTDOWN_TIMEOUT", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "billify"),
			Password:     getEnvString("DB_PASSWORD", "billify"),
			Name:         getEnvString("DB_NAME", "billify"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("REDIS_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			InvoicesTopic: getEnvString("KAFKA_INVOICES_TOPIC", "billify.invoices"),
			ConsumerGroup: getEnvString("KAFKA_CONSUMER_GROUP", "billify-mailer"),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnvString("JWT_SECRET", ""),
			TokenTTL:           getEnvDuration("JWT_TTL", 7*24*time.Hour),
			GoogleTokenInfoURL: getEnvString("GOOGLE_TOKENINFO_URL", "https://oauth2.googleapis.com/tokeninfo"),
			GoogleClientID:     getEnvString("GOOGLE_CLIENT_ID", ""),
			Timeout:            getEnvDuration("GOOGLE_TIMEOUT", 10*time.Second),
		},
		SMTP: SMTPConfig{
			Host:     getEnvString("SMTP_HOST", "localhost"),
			Port:     getEnvInt("SMTP_PORT", 2525),
			Username: getEnvString("SMTP_USERNAME", ""),
			Password: getEnvString("SMTP_PASSWORD", ""),
			From:     getEnvString("SMTP_FROM", "invoices@billify.local"),
			FromName: getEnvString("SMTP_FROM_NAME", "Billify"),
		},
		Invoice: InvoiceConfig{
			StoreTimeout:      getEnvDuration("INVOICE_STORE_TIMEOUT", 10*time.Second),
			MaxNumberAttempts: getEnvInt("INVOICE_MAX_NUMBER_ATTEMPTS", 5),
			DefaultGSTPercent: getEnvFloat("INVOICE_DEFAULT_GST_PERCENT", 5),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvInt("RATE_LIMIT_RPM", 120),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 20),
		},
		Features: FeatureFlags{
			EnableCaching:      getEnvBool("FEATURE_CACHING", true),
			EnableEvents:       getEnvBool("FEATURE_EVENTS", false),
			EnableInvoiceEmail: getEnvBool("FEATURE_INVOICE_EMAIL", false),
			AutoMigrate:        getEnvBool("FEATURE_AUTO_MIGRATE", true),
		},
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("10s", "5m").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
