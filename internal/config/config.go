package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	DBDSN   string
	LogFile string

	CacheCapacity int
	CacheTTL      time.Duration
	SweepInterval time.Duration
}

func Load() Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := Config{
		Port:          getenv("PORT", "8080"),
		DBDSN:         getenv("DB_DSN", "craftyard.db"),
		LogFile:       getenv("LOG_FILE", "./craftyard.log"),
		CacheCapacity: getint("CACHE_CAPACITY", 500),
		CacheTTL:      getdur("CACHE_TTL", 5*time.Minute),
		SweepInterval: getdur("CACHE_SWEEP_INTERVAL", time.Minute),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s CACHE_CAPACITY=%d CACHE_TTL=%s",
		cfg.Port, cfg.DBDSN, cfg.CacheCapacity, cfg.CacheTTL)
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("[config] ignoring invalid %s=%q", key, v)
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		log.Printf("[config] ignoring invalid %s=%q", key, v)
	}
	return def
}
