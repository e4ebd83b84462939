package config

import (
	"encoding/json"
	"os"

	"github.com/burnnote/burner/internal/flagx"
	"github.com/burnnote/burner/internal/timex"
)

// jsonConfig is the file-format counterpart of Config. Duration fields
// accept both strings ("30s") and integer nanoseconds.
type jsonConfig struct {
	Addr          string         `json:"addr"`
	StoreBacking  string         `json:"store_backing"`
	DatabaseDSN   string         `json:"database_dsn"`
	PurgeInterval timex.Duration `json:"purge_interval"`
	MaxTTL        timex.Duration `json:"max_ttl"`
	MaxNoteBytes  int64          `json:"max_note_bytes"`
}

// parseJSON overlays values from the JSON file named by -c/-config, if
// any. Absent fields leave the current values untouched. An unreadable or
// invalid file panics: a config file that was explicitly requested must
// not be half-applied.
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

	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	if c.StoreBacking != "" {
		cfg.StoreBacking = c.StoreBacking
	}
	if c.DatabaseDSN != "" {
		cfg.DatabaseDSN = c.DatabaseDSN
	}
	if c.PurgeInterval.Duration != 0 {
		cfg.PurgeInterval = c.PurgeInterval.Duration
	}
	if c.MaxTTL.Duration != 0 {
		cfg.MaxTTL = c.MaxTTL.Duration
	}
	if c.MaxNoteBytes != 0 {
		cfg.MaxNoteBytes = c.MaxNoteBytes
	}
}
