// Файл: pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type APIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	// Сколько запросов цен выполнять одновременно
	PriceLookupConcurrency int
}

type SessionConfig struct {
	// Парольная фраза для шифрования блобов токена и роли
	SecretKey string
	Store     string // "redis" или "memory"
}

type RedisConfig struct {
	Address       string
	Password      string
	DB            int
	NotifyChannel string
	CachePrefix   string
}

type GatewayConfig struct {
	Port           string
	AllowedOrigins []string
}

type ScreenConfig struct {
	PageSize         int
	Debounce         time.Duration
	CategoryCacheTTL time.Duration
}

type LogConfig struct {
	Level    string
	Encoding string
}

type Config struct {
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Gateway GatewayConfig
	Screens ScreenConfig
	Log     LogConfig
}

func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Предупреждение: .env файл не найден или не удалось его загрузить.")
	}

	return &Config{
		API: APIConfig{
			BaseURL:                getEnv("API_BASE_URL", "http://localhost:8000"),
			RequestTimeout:         getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
			PriceLookupConcurrency: getEnvInt("PRICE_LOOKUP_CONCURRENCY", 8),
		},
		Session: SessionConfig{
			SecretKey: getEnv("SESSION_SECRET_KEY", "TET4-1"),
			Store:     getEnv("SESSION_STORE", "redis"),
		},
		Redis: RedisConfig{
			Address:       getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvInt("REDIS_DB", 0),
			NotifyChannel: getEnv("REDIS_NOTIFY_CHANNEL", "order-desk:credentials"),
			CachePrefix:   getEnv("REDIS_CACHE_PREFIX", "order-desk:cache:"),
		},
		Gateway: GatewayConfig{
			Port:           getEnv("GATEWAY_PORT", "8090"),
			AllowedOrigins: getEnvList("GATEWAY_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Screens: ScreenConfig{
			PageSize:         getEnvInt("SCREEN_PAGE_SIZE", 20),
			Debounce:         getEnvDuration("SEARCH_DEBOUNCE", 500*time.Millisecond),
			CategoryCacheTTL: getEnvDuration("CATEGORY_CACHE_TTL", 10*time.Minute),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Предупреждение: %s=%q не число, используется %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Предупреждение: %s=%q не длительность, используется %s", key, value, fallback)
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
