// Package config handles configuration for the client component:
// defaults, optional JSON file, then command-line flags.
package config

import "time"

// Config holds runtime settings for the burner CLI.
//
// Fields:
//   - ServerURL: base URL of the burner server (remote mode).
//   - Mode: "local" for self-contained tokens (no server involved) or
//     "remote" for short-id tokens backed by a server. A deployment uses
//     one mode; tokens of the two kinds are not interchangeable.
//   - KDF: password key-derivation function, "pbkdf2" or "argon2id".
//   - DefaultTTL: time-to-live applied when the user does not pass one.
//   - RequestTimeout: HTTP timeout for server calls.
type Config struct {
	ServerURL      string
	Mode           string
	KDF            string
	DefaultTTL     time.Duration
	RequestTimeout time.Duration
}

// LoadDefaults populates Config with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.Mode = "remote"
	c.KDF = "pbkdf2"
	c.DefaultTTL = time.Hour
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
