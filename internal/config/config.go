package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type MySQLConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

// Enabled reports whether enough is configured to open the order journal.
func (c MySQLConfig) Enabled() bool {
	return c.Host != "" && c.Database != ""
}

type Config struct {
	AppEnv   string
	LogLevel string
	Port     string
	GinMode  string

	GeminiAPIKey string
	GeminiModel  string

	DeliveryFee   decimal.Decimal
	PaymentDelay  time.Duration
	StageInterval time.Duration

	MySQL            MySQLConfig
	RedisHost        string
	RedisDB          int
	RabbitMQURL      string
	RabbitMQExchange string
}

// Load reads .env from the working directory when present and then the
// process environment. The returned bool reports whether a .env was found.
func Load() (Config, bool) {
	loaded := godotenv.Load(".env") == nil

	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "release"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		DeliveryFee:   getEnvDecimal("DELIVERY_FEE", decimal.NewFromInt(49)),
		PaymentDelay:  getEnvDuration("PAYMENT_DELAY", 2*time.Second),
		StageInterval: getEnvDuration("STAGE_INTERVAL", 3500*time.Millisecond),

		MySQL: MySQLConfig{
			User:     os.Getenv("MYSQL_USER"),
			Password: os.Getenv("MYSQL_PASSWORD"),
			Host:     os.Getenv("MYSQL_HOST"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			Database: os.Getenv("MYSQL_DATABASE"),
		},
		RedisHost:        os.Getenv("REDIS_HOST"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "order.exchange"),
	}, loaded
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func getEnvDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return def
	}
	return d
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
