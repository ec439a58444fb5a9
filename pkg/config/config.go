package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort  string
	DBPath    string
	RedisAddr string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CartTTL         time.Duration
	DraftTTL        time.Duration
}

func Load() Config {
	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPPort:  getEnv("HTTP_PORT", "8080"),
		DBPath:    getEnv("DB_PATH", "./storefront.db"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CartTTL:         getEnvDuration("CART_TTL", 72*time.Hour),
		DraftTTL:        getEnvDuration("DRAFT_TTL", 24*time.Hour),
	}
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
	if err != nil {
		if secs, err2 := strconv.Atoi(v); err2 == nil {
			return time.Duration(secs) * time.Second
		}
		return def
	}
	return d
}
