// Package config loads runtime configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Backend names accepted in STORE_BACKEND.
const (
	BackendMemory = "memory"
	BackendMySQL  = "mysql"
)

// Config holds all runtime configuration values.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	StoreBackend    string // "memory" or "mysql"
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	SessionTTLHours int    // session time-to-live in hours
}

// Load reads configuration from the environment. The database
// variables are required only when the durable backend is selected;
// the memory backend needs nothing beyond the defaults.
func Load() Config {
	cfg := Config{
		Env:             envStr("APP_ENV", "dev"),
		Port:            envStr("APP_PORT", "8080"),
		StoreBackend:    envStr("STORE_BACKEND", BackendMemory),
		SessionTTLHours: envInt("SESSION_TTL_HOURS", 168),
	}
	if cfg.StoreBackend == BackendMySQL {
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	} else if cfg.StoreBackend != BackendMemory {
		log.Fatalf("unknown STORE_BACKEND: %q", cfg.StoreBackend)
	}
	return cfg
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
