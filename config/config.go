package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port string

	StartingBalance   float64
	MaxHistoryPerUser int

	RedisURL      string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	DatabaseURL string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load reads the environment. Call godotenv.Load first to pick up a .env
// file. Unparseable values fall back to their defaults with a warning.
func Load() *Config {
	return &Config{
		Port:              getString("PORT", ServerPort),
		StartingBalance:   getFloat("STARTING_BALANCE", DefaultStartingBalance),
		MaxHistoryPerUser: getInt("MAX_HISTORY_PER_USER", DefaultMaxHistoryPerUser),
		RedisURL:          os.Getenv("REDIS_URL"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getInt("REDIS_DB", 0),
		SessionTTL:        getDuration("SESSION_TTL", DefaultSessionTTL),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ReadTimeout:       getDuration("HTTP_READ_TIMEOUT", DefaultReadTimeout),
		WriteTimeout:      getDuration("HTTP_WRITE_TIMEOUT", DefaultWriteTimeout),
		IdleTimeout:       getDuration("HTTP_IDLE_TIMEOUT", DefaultIdleTimeout),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		log.Printf("⚠️  Invalid %s=%q, using %.2f", key, v, fallback)
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
