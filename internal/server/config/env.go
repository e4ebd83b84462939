package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading a
// .env file first if one exists next to the binary. Unset variables leave
// the current values untouched.
//
// Recognized variables:
//
//	BURNER_ADDR            bind address
//	BURNER_STORE           "memory" | "postgres"
//	BURNER_DATABASE_DSN    PostgreSQL DSN
//	BURNER_PURGE_INTERVAL  Go duration, e.g. "30s"
//	BURNER_MAX_TTL         Go duration, e.g. "168h"
//	BURNER_MAX_NOTE_BYTES  integer
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("BURNER_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("BURNER_STORE"); v != "" {
		cfg.StoreBacking = v
	}
	if v := os.Getenv("BURNER_DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("BURNER_PURGE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PurgeInterval = d
		}
	}
	if v := os.Getenv("BURNER_MAX_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.MaxTTL = d
		}
	}
	if v := os.Getenv("BURNER_MAX_NOTE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxNoteBytes = n
		}
	}
}
