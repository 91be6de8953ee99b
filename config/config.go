package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Redis     RedisConfig
	Checkout  CheckoutConfig
	Variants  VariantConfig
	Scheduler SchedulerConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxIdleConns  int
	MaxOpenConns  int
	SlowThreshold time.Duration // queries slower than this are logged at warn
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// RedisConfig is optional; an empty Host keeps cart sessions in the database.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type CheckoutConfig struct {
	TaxRate          float64       // applied to the pre-discount subtotal
	GiftCardValidity time.Duration // lifetime of a newly purchased gift card
	CartTTL          time.Duration // idle carts older than this are purged
	MinGiftCard      float64
	MaxGiftCard      float64
}

type VariantConfig struct {
	MaxCombinations int // larger attribute selections are rejected
}

type SchedulerConfig struct {
	Enabled        bool
	GiftCardSweep  string // cron spec
	DiscountSweep  string
	StaleCartPurge string
}

type MetricsConfig struct {
	Enabled bool
	Path    string
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
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "storefront"),
			Password: getEnv("DB_PASSWORD", "storefront"),
			DBName:   getEnv("DB_NAME", "storefront"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxIdleConns:  parseInt(getEnv("DB_MAX_IDLE_CONNS", "10"), 10),
			MaxOpenConns:  parseInt(getEnv("DB_MAX_OPEN_CONNS", "100"), 100),
			SlowThreshold: parseDuration(getEnv("DB_SLOW_THRESHOLD", "200ms"), 200*time.Millisecond),
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
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Checkout: CheckoutConfig{
			TaxRate:          parseFloat(getEnv("CHECKOUT_TAX_RATE", "0.20"), 0.20),
			GiftCardValidity: parseDuration(getEnv("GIFT_CARD_VALIDITY", "8760h"), 8760*time.Hour),
			CartTTL:          parseDuration(getEnv("CART_TTL", "720h"), 720*time.Hour),
			MinGiftCard:      parseFloat(getEnv("GIFT_CARD_MIN_AMOUNT", "5"), 5),
			MaxGiftCard:      parseFloat(getEnv("GIFT_CARD_MAX_AMOUNT", "1000"), 1000),
		},
		Variants: VariantConfig{
			MaxCombinations: parseInt(getEnv("VARIANT_MAX_COMBINATIONS", "1000"), 1000),
		},
		Scheduler: SchedulerConfig{
			Enabled:        getEnv("SCHEDULER_ENABLED", "true") == "true",
			GiftCardSweep:  getEnv("SCHEDULER_GIFT_CARD_SWEEP", "0 3 * * *"),
			DiscountSweep:  getEnv("SCHEDULER_DISCOUNT_SWEEP", "*/30 * * * *"),
			StaleCartPurge: getEnv("SCHEDULER_STALE_CART_PURGE", "0 4 * * *"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnv("METRICS_ENABLED", "true") == "true",
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr returns host:port, or "" when Redis is not configured.
func (c *RedisConfig) Addr() string {
	if c.Host == "" {
		return ""
	}
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

func parseFloat(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Invalid number %s, using default %v", s, fallback)
		return fallback
	}
	return v
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return v
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for i := 0; i < len(s); {
		end := i
		for end < len(s) && s[end] != ',' {
			end++
		}
		result = append(result, s[i:end])
		i = end + 1
	}
	return result
}
