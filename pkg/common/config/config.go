package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	RateLimitRPS   int
	RateLimitBurst int

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers        []string
	KafkaGroupID        string
	ClaimsEventsTopic   string
	PayerResponsesTopic string
	ClaimsDLQTopic      string

	// Catalog
	CatalogPath string

	// Generation
	ServiceWindowDays    int
	MinChargeAmount      float64
	MaxChargeAmount      float64
	MaxClaimsPerRequest  int
	SummaryCacheTTL      time.Duration
	StatusEventConsumers int
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1*1024*1024)),
		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "revara"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "revara123"),
		PostgresDB:       getEnv("POSTGRES_DB", "revara"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:        getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:        getEnv("KAFKA_GROUP_ID", "revara-claims"),
		ClaimsEventsTopic:   getEnv("CLAIMS_EVENTS_TOPIC", "claims-lifecycle"),
		PayerResponsesTopic: getEnv("PAYER_RESPONSES_TOPIC", "payer-responses"),
		ClaimsDLQTopic:      getEnv("CLAIMS_DLQ_TOPIC", ""),

		CatalogPath: getEnv("CATALOG_PATH", ""),

		ServiceWindowDays:    getIntEnv("SERVICE_WINDOW_DAYS", 90),
		MinChargeAmount:      getFloatEnv("MIN_CHARGE_AMOUNT", 150),
		MaxChargeAmount:      getFloatEnv("MAX_CHARGE_AMOUNT", 25000),
		MaxClaimsPerRequest:  getIntEnv("MAX_CLAIMS_PER_REQUEST", 5000),
		SummaryCacheTTL:      getDuration("SUMMARY_CACHE_TTL", 5*time.Minute),
		StatusEventConsumers: getIntEnv("STATUS_EVENT_CONSUMERS", 1),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
