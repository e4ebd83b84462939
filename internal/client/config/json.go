package config

import (
	"encoding/json"
	"os"

	"github.com/burnnote/burner/internal/flagx"
	"github.com/burnnote/burner/internal/timex"
)

type jsonConfig struct {
	ServerURL      string         `json:"server_url"`
	Mode           string         `json:"mode"`
	KDF            string         `json:"kdf"`
	DefaultTTL     timex.Duration `json:"default_ttl"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJSON overlays values from the JSON file named by -c/-config, if
// any. Absent fields leave the current values untouched.
func parseJSON(cfg *Config) {
	path := flagx.ConfigFile()
	if path == "" {
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var c jsonConfig
	if err := json.Unmarshal(raw, &c); err != nil {
		panic(err)
	}

	if c.ServerURL != "" {
		cfg.ServerURL = c.ServerURL
	}
	if c.Mode != "" {
		cfg.Mode = c.Mode
	}
	if c.KDF != "" {
		cfg.KDF = c.KDF
	}
	if c.DefaultTTL.Duration != 0 {
		cfg.DefaultTTL = c.DefaultTTL.Duration
	}
	if c.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = c.RequestTimeout.Duration
	}
}
